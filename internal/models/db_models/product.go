package db_models

// Product is one catalog entry for a shopkeeper; catalog prices feed the
// sales validator and the price-deviation anomaly rule.
type Product struct {
	BaseModel
	ShopkeeperID string `gorm:"uniqueIndex:idx_shop_product"`
	Code         string `gorm:"uniqueIndex:idx_shop_product"`
	Name         string
	PriceMinor   int64 // catalog unit price, paise
	IsActive     bool  `gorm:"default:true"`
}
