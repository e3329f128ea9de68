package utils

import "errors"

var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrConfirmationNotFound   = errors.New("pending confirmation not found")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrEmptyBatch             = errors.New("no sales records to aggregate")
	ErrBatchAlreadyCommitted  = errors.New("daily batch already committed")
	ErrDatabaseError          = errors.New("database error")
)
