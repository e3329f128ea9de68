package request_models

type DailyBatchRequest struct {
	ShopkeeperID string `json:"shopkeeper_id" binding:"required"`
	Date         string `json:"date" binding:"required"` // YYYY-MM-DD (IST)
}
