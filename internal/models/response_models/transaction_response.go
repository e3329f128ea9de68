package response_models

// TransactionResponse is returned to the caller immediately after
// verification; blockchain fields fill in asynchronously.
type TransactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AmountMinor int64  `json:"amount"`

	ShopkeeperID string `json:"shopkeeper_id"`
	CustomerID   string `json:"customer_id,omitempty"`
	ProductCode  string `json:"product_code,omitempty"`

	Status             string `json:"status"`
	VerificationStatus string `json:"verification_status"`
	StorageLocation    string `json:"storage_location"`

	TranscriptHash string `json:"transcript_hash"`
	FraudScore     int    `json:"fraud_score"`
	FraudRiskLevel string `json:"fraud_risk_level"`

	ShouldWriteToBlockchain bool    `json:"should_write_to_blockchain"`
	BlockchainTxID          *string `json:"blockchain_tx_id,omitempty"`
	BlockchainBlockNumber   *int64  `json:"blockchain_block_number,omitempty"`

	ConfirmationRequested bool   `json:"confirmation_requested"`
	ConfirmationID        string `json:"confirmation_id,omitempty"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt int64 `json:"created_at"`
}
