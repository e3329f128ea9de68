package db_models

// DailyBatch records the single per-shopkeeper per-day fold of low-risk sales
// committed to the chain via recordBatchTransactions. The unique index is the
// once-per-day guarantee; replays of the aggregation are idempotent.
type DailyBatch struct {
	BaseModel
	ShopkeeperID string `gorm:"uniqueIndex:idx_shop_date"`
	Date         string `gorm:"size:10;uniqueIndex:idx_shop_date"` // YYYY-MM-DD (IST)

	TotalAmountMinor int64
	TransactionCount int
	BatchHash        string `gorm:"size:64"`

	BlockchainTxID        *string `gorm:"size:66"`
	BlockchainBlockNumber *int64
}
