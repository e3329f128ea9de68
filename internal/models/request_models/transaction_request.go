package request_models

// HistoryPayload is the pre-computed shopkeeper history an upstream service
// may attach to the envelope; when absent the ledger derives it fresh.
type HistoryPayload struct {
	AverageDailySales int64            `json:"average_daily_sales"`
	CreditCountToday  map[string]int   `json:"credit_count_today"`
	PurchaseCounts    map[string]int   `json:"purchase_counts"`
	CatalogPrices     map[string]int64 `json:"catalog_prices"`
	SalesTodayTotal   int64            `json:"sales_today_total"`
	TotalTransactions int64            `json:"total_transactions"`
}

// TransactionRequest is the transaction input envelope. Amounts are integer
// minor units (paise).
type TransactionRequest struct {
	Transcript string `json:"transcript" binding:"required"`
	Type       string `json:"type" binding:"required"`

	// Credit/repay fields.
	AmountMinor       int64  `json:"amount"`
	CustomerID        string `json:"customer_id"`
	CustomerContact   string `json:"customer_contact"`
	CustomerConfirmed bool   `json:"customer_confirmed"`

	// Sale fields.
	ProductCode    string `json:"product_code"`
	UnitPriceMinor int64  `json:"unit_price"`
	Quantity       int64  `json:"quantity"`

	ShopkeeperID      string `json:"shopkeeper_id" binding:"required"`
	ShopkeeperName    string `json:"shopkeeper_name"`
	ShopkeeperAddress string `json:"shopkeeper_address"`

	Language string `json:"language"`

	ShopkeeperHistory *HistoryPayload `json:"shopkeeper_history,omitempty"`
}
