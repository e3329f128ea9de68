package controllers

import (
	"net/http"

	"kiranaledger/internal/models/request_models"
	"kiranaledger/internal/services"
	"kiranaledger/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransactionController struct {
	transactionService services.TransactionServiceInterface
}

func NewTransactionController(transactionService services.TransactionServiceInterface) *TransactionController {
	return &TransactionController{
		transactionService: transactionService,
	}
}

// SubmitTransaction verifies and records a voice-captured transaction. The
// response carries the verification decision immediately; any chain write
// completes asynchronously.
func (t *TransactionController) SubmitTransaction(c *gin.Context) {
	var request request_models.TransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if shopkeeperID := c.GetString("shopkeeper_id"); shopkeeperID != "" && shopkeeperID != request.ShopkeeperID {
		utils.RespondError(c, http.StatusForbidden, "shopkeeper_id does not match token")
		return
	}

	result, err := t.transactionService.SubmitTransaction(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Transaction recorded")
}

func (t *TransactionController) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	result, err := t.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}
