package db_models

import (
	"gorm.io/datatypes"
)

type TransactionType string

const (
	TxnTypeSale   TransactionType = "sale"
	TxnTypeCredit TransactionType = "credit"
	TxnTypeRepay  TransactionType = "repay"
)

type TransactionStatus string

const (
	TxnStatusPending   TransactionStatus = "pending"
	TxnStatusVerified  TransactionStatus = "verified"
	TxnStatusDisputed  TransactionStatus = "disputed"
	TxnStatusCompleted TransactionStatus = "completed"
)

type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationPending  VerificationStatus = "pending"
	VerificationFlagged  VerificationStatus = "flagged"
	VerificationRejected VerificationStatus = "rejected"
)

type StorageLocation string

const (
	StorageBlockchain      StorageLocation = "blockchain"
	StorageDatabaseOnly    StorageLocation = "database_only"
	StorageDatabasePending StorageLocation = "database_pending"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Transaction is the durable ledger record of one voice-captured sale, credit
// extension or repayment, together with its verification and chain metadata.
type Transaction struct {
	BaseModel
	Type        TransactionType `gorm:"size:16;index"`
	AmountMinor int64           // paise
	Quantity    int64

	ShopkeeperID string  `gorm:"index"`
	CustomerID   string  `gorm:"index"`
	ProductCode  *string `gorm:"index"`

	// Chain address the commit is attributed to; the signer address is used
	// when the upstream service does not supply one.
	ShopkeeperAddress string `gorm:"size:42"`

	OccurredAt int64             `gorm:"index"` // unix seconds
	Status     TransactionStatus `gorm:"size:16;index"`

	Transcript     string
	TranscriptHash string `gorm:"size:64;index"`
	Language       string `gorm:"size:8"`

	FraudScore     int // 0-100
	FraudRiskLevel RiskLevel `gorm:"size:16"`

	VerificationStatus VerificationStatus `gorm:"size:16;index"`
	StorageLocation    StorageLocation    `gorm:"size:24"`
	CustomerConfirmed  bool

	// Write-once: set exactly one time by the commit worker; once non-null no
	// further chain write is attempted for this transaction.
	BlockchainTxID        *string `gorm:"size:66;uniqueIndex"`
	BlockchainBlockNumber *int64

	// Storage decision detail, fraud reasons, errors and warnings.
	VerificationMetadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
