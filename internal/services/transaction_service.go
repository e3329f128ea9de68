package services

import (
	"context"
	"encoding/json"
	"time"

	"kiranaledger/internal/chain"
	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/models/request_models"
	"kiranaledger/internal/models/response_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/internal/worker"
	"kiranaledger/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

type TransactionServiceInterface interface {
	// SubmitTransaction verifies and records one envelope synchronously. The
	// core invariant: a transaction always gets a database record, even when
	// validation rejects it or every collaborator is down. Chain submission
	// happens asynchronously; the response reflects pending/database_pending.
	SubmitTransaction(ctx context.Context, req request_models.TransactionRequest) (*response_models.TransactionResponse, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*response_models.TransactionResponse, error)
}

type TransactionService struct {
	ledger        repositories.LedgerRepositoryInterface
	verification  VerificationServiceInterface
	confirmations ConfirmationServiceInterface
	commits       worker.CommitQueueInterface
	log           zerolog.Logger
}

func NewTransactionService(
	ledger repositories.LedgerRepositoryInterface,
	verification VerificationServiceInterface,
	confirmations ConfirmationServiceInterface,
	commits worker.CommitQueueInterface,
	log zerolog.Logger,
) TransactionServiceInterface {
	return &TransactionService{
		ledger:        ledger,
		verification:  verification,
		confirmations: confirmations,
		commits:       commits,
		log:           log.With().Str("component", "transactions").Logger(),
	}
}

func (s *TransactionService) SubmitTransaction(ctx context.Context, req request_models.TransactionRequest) (*response_models.TransactionResponse, error) {
	txnType := db_models.TransactionType(req.Type)
	switch txnType {
	case db_models.TxnTypeSale, db_models.TxnTypeCredit, db_models.TxnTypeRepay:
	default:
		return nil, utils.ErrUnknownTransactionType
	}

	occurredAt := utils.NowIST()
	history := s.resolveHistory(ctx, req, occurredAt)

	var result *VerificationResult
	if txnType == db_models.TxnTypeSale {
		result = s.verification.VerifySalesTransaction(SalesVerification{
			Transcript:     req.Transcript,
			ProductCode:    req.ProductCode,
			UnitPriceMinor: req.UnitPriceMinor,
			Quantity:       req.Quantity,
			ShopkeeperID:   req.ShopkeeperID,
			Language:       req.Language,
			OccurredAt:     occurredAt,
		}, history)
	} else {
		result = s.verification.VerifyCreditTransaction(CreditVerification{
			Transcript:        req.Transcript,
			AmountMinor:       req.AmountMinor,
			CustomerID:        req.CustomerID,
			ShopkeeperID:      req.ShopkeeperID,
			CustomerConfirmed: req.CustomerConfirmed,
			Language:          req.Language,
			OccurredAt:        occurredAt,
		}, history)
	}

	txn := s.buildRecord(req, txnType, occurredAt, result)
	if err := s.ledger.CreateTransaction(ctx, txn); err != nil {
		s.log.Error().Err(err).Msg("failed to persist transaction")
		return nil, utils.ErrDatabaseError
	}

	resp := toTransactionResponse(txn)
	resp.ShouldWriteToBlockchain = result.ShouldWriteToBlockchain
	resp.Errors = result.Errors
	resp.Warnings = result.Warnings

	if result.Status == db_models.VerificationPending && txnType != db_models.TxnTypeSale {
		pc, err := s.confirmations.OpenConfirmation(ctx, txn, req.CustomerContact, req.ShopkeeperName)
		if err != nil {
			// Degrades to database_pending without an open request; the
			// record is safe and an operator can re-trigger verification.
			s.log.Error().Err(err).Str("transaction_id", txn.ID.String()).Msg("failed to open pending confirmation")
		} else {
			resp.ConfirmationRequested = true
			resp.ConfirmationID = pc.ID.String()
		}
	}

	if result.ShouldWriteToBlockchain {
		txType := chain.TxTypeCredit
		if txnType == db_models.TxnTypeRepay {
			txType = chain.TxTypeRepay
		}
		s.commits.Enqueue(worker.CommitJob{
			Kind:          worker.JobRecordTransaction,
			TransactionID: txn.ID,
			ContentHash:   txn.TranscriptHash,
			ShopAddress:   txn.ShopkeeperAddress,
			AmountMinor:   txn.AmountMinor,
			TxType:        txType,
		})
	}

	return resp, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*response_models.TransactionResponse, error) {
	txn, err := s.ledger.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(txn), nil
}

// resolveHistory prefers the envelope's pre-computed history and otherwise
// derives it fresh from the ledger. Derivation failure degrades to an empty
// history rather than blocking the record.
func (s *TransactionService) resolveHistory(ctx context.Context, req request_models.TransactionRequest, at time.Time) *repositories.ShopkeeperHistory {
	if req.ShopkeeperHistory != nil {
		h := req.ShopkeeperHistory
		return &repositories.ShopkeeperHistory{
			AverageDailySales: h.AverageDailySales,
			CreditCountToday:  h.CreditCountToday,
			PurchaseCounts:    h.PurchaseCounts,
			CatalogPrices:     h.CatalogPrices,
			SalesTodayTotal:   h.SalesTodayTotal,
			TotalTransactions: h.TotalTransactions,
		}
	}

	history, err := s.ledger.BuildShopkeeperHistory(ctx, req.ShopkeeperID, at)
	if err != nil {
		s.log.Error().Err(err).Str("shopkeeper_id", req.ShopkeeperID).Msg("history derivation failed; scoring with empty history")
		return &repositories.ShopkeeperHistory{}
	}
	return history
}

func (s *TransactionService) buildRecord(req request_models.TransactionRequest, txnType db_models.TransactionType, occurredAt time.Time, result *VerificationResult) *db_models.Transaction {
	txn := &db_models.Transaction{
		Type:              txnType,
		AmountMinor:       result.Metadata.AmountMinor,
		Quantity:          req.Quantity,
		ShopkeeperID:      req.ShopkeeperID,
		CustomerID:        req.CustomerID,
		ShopkeeperAddress: req.ShopkeeperAddress,
		OccurredAt:        occurredAt.Unix(),
		Status:            lifecycleStatus(result.Status),
		Transcript:        req.Transcript,
		TranscriptHash:    result.TranscriptHash,
		Language:          req.Language,
		FraudScore:        int(result.FraudCheck.Score * 100),
		FraudRiskLevel:    result.FraudCheck.RiskLevel,

		VerificationStatus: result.Status,
		StorageLocation:    result.StorageLocation,
		CustomerConfirmed:  req.CustomerConfirmed,
	}

	if txnType == db_models.TxnTypeCredit || txnType == db_models.TxnTypeRepay {
		txn.AmountMinor = req.AmountMinor
	}
	if req.ProductCode != "" {
		txn.ProductCode = &req.ProductCode
	}
	if txn.FraudRiskLevel == "" {
		txn.FraudRiskLevel = db_models.RiskLow
	}

	// Full verification snapshot for traceability.
	if bytes, err := json.Marshal(result); err == nil {
		txn.VerificationMetadata = datatypes.JSON(bytes)
	}

	return txn
}

func lifecycleStatus(vs db_models.VerificationStatus) db_models.TransactionStatus {
	switch vs {
	case db_models.VerificationVerified:
		return db_models.TxnStatusVerified
	case db_models.VerificationPending:
		return db_models.TxnStatusPending
	default:
		// Flagged and rejected transactions are disputes to be reviewed.
		return db_models.TxnStatusDisputed
	}
}

func toTransactionResponse(txn *db_models.Transaction) *response_models.TransactionResponse {
	resp := &response_models.TransactionResponse{
		ID:                    txn.ID.String(),
		Type:                  string(txn.Type),
		AmountMinor:           txn.AmountMinor,
		ShopkeeperID:          txn.ShopkeeperID,
		CustomerID:            txn.CustomerID,
		Status:                string(txn.Status),
		VerificationStatus:    string(txn.VerificationStatus),
		StorageLocation:       string(txn.StorageLocation),
		TranscriptHash:        txn.TranscriptHash,
		FraudScore:            txn.FraudScore,
		FraudRiskLevel:        string(txn.FraudRiskLevel),
		BlockchainTxID:        txn.BlockchainTxID,
		BlockchainBlockNumber: txn.BlockchainBlockNumber,
		CreatedAt:             txn.CreatedAt,
	}
	if txn.ProductCode != nil {
		resp.ProductCode = *txn.ProductCode
	}
	return resp
}
