package services

import (
	"time"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/pkg/utils"

	"github.com/rs/zerolog"
)

type VerificationMetadata struct {
	Language          string `json:"language,omitempty"`
	AmountMinor       int64  `json:"amount_minor"`
	ShopkeeperID      string `json:"shopkeeper_id"`
	CustomerID        string `json:"customer_id,omitempty"`
	CustomerConfirmed bool   `json:"customer_confirmed"`
	VerifiedAt        int64  `json:"verified_at"`
}

type VerificationResult struct {
	Status          db_models.VerificationStatus `json:"status"`
	StorageLocation db_models.StorageLocation    `json:"storage_location"`
	TranscriptHash  string                       `json:"transcript_hash"`
	FraudCheck      FraudCheckResult             `json:"fraud_check"`
	Errors          []string                     `json:"errors,omitempty"`
	Warnings        []string                     `json:"warnings,omitempty"`
	Metadata        VerificationMetadata         `json:"metadata"`

	// Derived, never set directly: see ShouldWriteToBlockchain.
	ShouldWriteToBlockchain bool `json:"should_write_to_blockchain"`
}

type CreditVerification struct {
	Transcript        string
	AmountMinor       int64
	CustomerID        string
	ShopkeeperID      string
	CustomerConfirmed bool
	Language          string
	OccurredAt        time.Time
}

type SalesVerification struct {
	Transcript     string
	ProductCode    string
	UnitPriceMinor int64
	Quantity       int64
	ShopkeeperID   string
	Language       string
	OccurredAt     time.Time
}

type VerificationServiceInterface interface {
	VerifyCreditTransaction(data CreditVerification, history *repositories.ShopkeeperHistory) *VerificationResult
	VerifySalesTransaction(data SalesVerification, history *repositories.ShopkeeperHistory) *VerificationResult
}

type VerificationService struct {
	fraud FraudServiceInterface
	log   zerolog.Logger
}

func NewVerificationService(fraud FraudServiceInterface, log zerolog.Logger) VerificationServiceInterface {
	return &VerificationService{
		fraud: fraud,
		log:   log.With().Str("component", "verification").Logger(),
	}
}

// VerifyCreditTransaction decides {status, storage location} for a credit or
// repayment. High/critical risk never reaches the chain regardless of
// customer confirmation; that gate is not subject to any race.
func (s *VerificationService) VerifyCreditTransaction(data CreditVerification, history *repositories.ShopkeeperHistory) *VerificationResult {
	result := &VerificationResult{
		TranscriptHash: utils.CalculateTranscriptHash(data.Transcript),
		Metadata: VerificationMetadata{
			Language:          data.Language,
			AmountMinor:       data.AmountMinor,
			ShopkeeperID:      data.ShopkeeperID,
			CustomerID:        data.CustomerID,
			CustomerConfirmed: data.CustomerConfirmed,
			VerifiedAt:        time.Now().Unix(),
		},
	}

	validation := s.fraud.ValidateCreditTransaction(data.AmountMinor, data.CustomerID, data.ShopkeeperID, data.CustomerConfirmed)
	result.Errors = validation.Errors
	result.Warnings = validation.Warnings

	if !validation.Valid {
		result.Status = db_models.VerificationRejected
		result.StorageLocation = db_models.StorageDatabaseOnly
		return s.finish(result)
	}

	result.FraudCheck = s.fraud.DetectCreditAnomaly(CreditCheck{
		AmountMinor: data.AmountMinor,
		CustomerID:  data.CustomerID,
		OccurredAt:  data.OccurredAt,
	}, history)

	switch result.FraudCheck.RiskLevel {
	case db_models.RiskHigh, db_models.RiskCritical:
		result.Status = db_models.VerificationFlagged
		result.StorageLocation = db_models.StorageDatabaseOnly

	case db_models.RiskMedium:
		if data.CustomerConfirmed {
			result.Status = db_models.VerificationVerified
			result.StorageLocation = db_models.StorageBlockchain
		} else {
			result.Status = db_models.VerificationPending
			result.StorageLocation = db_models.StorageDatabasePending
		}

	case db_models.RiskLow:
		if data.CustomerConfirmed || data.AmountMinor <= AutoVerifyLimitMinor {
			result.Status = db_models.VerificationVerified
			result.StorageLocation = db_models.StorageBlockchain
		} else {
			result.Status = db_models.VerificationPending
			result.StorageLocation = db_models.StorageDatabasePending
		}

	default:
		result.Status = db_models.VerificationPending
		result.StorageLocation = db_models.StorageDatabasePending
	}

	return s.finish(result)
}

// VerifySalesTransaction validates a sale against the catalog. Sales never
// set storage_location=blockchain individually; they reach the chain only
// through the daily batch.
func (s *VerificationService) VerifySalesTransaction(data SalesVerification, history *repositories.ShopkeeperHistory) *VerificationResult {
	result := &VerificationResult{
		TranscriptHash:  utils.CalculateTranscriptHash(data.Transcript),
		StorageLocation: db_models.StorageDatabaseOnly,
		Metadata: VerificationMetadata{
			Language:     data.Language,
			ShopkeeperID: data.ShopkeeperID,
			VerifiedAt:   time.Now().Unix(),
		},
	}

	catalog := map[string]int64{}
	if history != nil && history.CatalogPrices != nil {
		catalog = history.CatalogPrices
	}

	validation := s.fraud.ValidateSalesTransaction(data.ProductCode, data.UnitPriceMinor, data.Quantity, catalog)
	result.Errors = validation.Errors
	result.Warnings = validation.Warnings
	result.Metadata.AmountMinor = validation.TotalAmountMinor

	if !validation.Valid {
		result.Status = db_models.VerificationRejected
		return s.finish(result)
	}

	result.FraudCheck = s.fraud.DetectSalesAnomaly(SalesCheck{
		ProductCode:    data.ProductCode,
		UnitPriceMinor: data.UnitPriceMinor,
		Quantity:       data.Quantity,
		OccurredAt:     data.OccurredAt,
	}, history)

	if result.FraudCheck.IsFlagged {
		result.Status = db_models.VerificationFlagged
	} else {
		result.Status = db_models.VerificationVerified
	}

	return s.finish(result)
}

func (s *VerificationService) finish(result *VerificationResult) *VerificationResult {
	result.ShouldWriteToBlockchain = ShouldWriteToBlockchain(result)

	s.log.Info().
		Str("status", string(result.Status)).
		Str("storage", string(result.StorageLocation)).
		Float64("fraud_score", result.FraudCheck.Score).
		Bool("chain_eligible", result.ShouldWriteToBlockchain).
		Msg("verification decided")
	return result
}

// ShouldWriteToBlockchain is a pure derivation: true iff the status is not
// rejected/flagged and the storage location is the blockchain.
func ShouldWriteToBlockchain(result *VerificationResult) bool {
	if result.Status == db_models.VerificationRejected || result.Status == db_models.VerificationFlagged {
		return false
	}
	return result.StorageLocation == db_models.StorageBlockchain
}
