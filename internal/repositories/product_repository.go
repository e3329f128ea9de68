package repositories

import (
	"context"

	"kiranaledger/internal/models/db_models"

	"gorm.io/gorm"
)

type ProductRepositoryInterface interface {
	GetCatalogPrices(ctx context.Context, shopkeeperID string) (map[string]int64, error)
}

func NewProductRepository(db *gorm.DB) ProductRepositoryInterface {
	return &ProductRepository{db: db}
}

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) GetCatalogPrices(ctx context.Context, shopkeeperID string) (map[string]int64, error) {
	var products []db_models.Product
	err := r.db.WithContext(ctx).
		Where("shopkeeper_id = ? AND is_active = TRUE", shopkeeperID).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	catalog := make(map[string]int64, len(products))
	for _, p := range products {
		catalog[p.Code] = p.PriceMinor
	}
	return catalog, nil
}
