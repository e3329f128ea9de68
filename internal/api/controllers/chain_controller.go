package controllers

import (
	"net/http"
	"strconv"

	"kiranaledger/internal/chain"
	"kiranaledger/internal/models/request_models"
	"kiranaledger/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ChainController exposes the commit client's admin writes and read queries.
// Writes here are synchronous: they are rare operator actions, not part of
// the transaction hot path.
type ChainController struct {
	writer chain.LedgerWriter
	reader chain.LedgerReader
}

func NewChainController(writer chain.LedgerWriter, reader chain.LedgerReader) *ChainController {
	return &ChainController{
		writer: writer,
		reader: reader,
	}
}

func (cc *ChainController) RegisterShopkeeper(c *gin.Context) {
	var request request_models.RegisterShopkeeperRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := cc.writer.RegisterShopkeeper(c.Request.Context(), request.Address, request.Name)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Shopkeeper registered on chain")
}

func (cc *ChainController) UpdateCreditScore(c *gin.Context) {
	var request request_models.UpdateCreditScoreRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := cc.writer.UpdateCreditScore(c.Request.Context(), request.Address, request.Score)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Credit score updated on chain")
}

func (cc *ChainController) CreateCooperative(c *gin.Context) {
	var request request_models.CreateCooperativeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := cc.writer.CreateCooperative(c.Request.Context(), request.Name)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Cooperative created on chain")
}

func (cc *ChainController) JoinCooperative(c *gin.Context) {
	coopID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid cooperative id")
		return
	}

	var request request_models.JoinCooperativeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := cc.writer.JoinCooperative(c.Request.Context(), coopID, request.MemberAddress)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Member joined cooperative on chain")
}

func (cc *ChainController) GetTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	txn, err := cc.reader.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, txn, "")
}

func (cc *ChainController) GetCreditScore(c *gin.Context) {
	score, err := cc.reader.GetCreditScore(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"address": c.Param("address"), "score": score}, "")
}

func (cc *ChainController) IsShopkeeperRegistered(c *gin.Context) {
	registered, err := cc.reader.IsShopkeeperRegistered(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"address": c.Param("address"), "registered": registered}, "")
}

func (cc *ChainController) GetCooperative(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid cooperative id")
		return
	}

	coop, err := cc.reader.GetCooperative(c.Request.Context(), id)
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, coop, "")
}

func (cc *ChainController) GetNextTransactionID(c *gin.Context) {
	id, err := cc.reader.GetNextTransactionID(c.Request.Context())
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"next_transaction_id": id}, "")
}

func (cc *ChainController) GetBalance(c *gin.Context) {
	balance, err := cc.reader.Balance(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondChainError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"address": c.Param("address"), "balance_wei": balance.String()}, "")
}

func respondChainError(c *gin.Context, err error) {
	switch chain.KindOf(err) {
	case chain.ErrRpcUnavailable:
		utils.RespondError(c, http.StatusServiceUnavailable, "Blockchain RPC unavailable")
	case chain.ErrContractReverted:
		utils.RespondError(c, http.StatusUnprocessableEntity, "Contract reverted the operation")
	case chain.ErrReceiptTimeout:
		utils.RespondError(c, http.StatusGatewayTimeout, "Timed out waiting for chain receipt")
	case chain.ErrSigningFailed:
		utils.RespondError(c, http.StatusInternalServerError, "Failed to sign chain transaction")
	default:
		utils.HandleServiceError(c, err)
	}
}
