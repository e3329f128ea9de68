package db_models

import (
	"github.com/google/uuid"
)

type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationRejected  ConfirmationStatus = "rejected"
	ConfirmationExpired   ConfirmationStatus = "expired"
)

// PendingConfirmation is a time-boxed request for a customer to acknowledge a
// credit/repay transaction over the messaging channel. Status is monotonic:
// once it leaves pending it is terminal.
type PendingConfirmation struct {
	BaseModel
	TransactionID uuid.UUID `gorm:"type:uuid;index"`

	// Normalized phone/contact identity the reply is matched on. At most one
	// active (pending, unexpired) confirmation exists per contact.
	Contact string `gorm:"index"`

	AmountMinor    int64
	ShopkeeperName string

	Status     ConfirmationStatus `gorm:"size:16;index"`
	ExpiresAt  int64              `gorm:"index"` // unix seconds
	ResolvedAt *int64

	Transaction Transaction `gorm:"foreignKey:TransactionID"`
}
