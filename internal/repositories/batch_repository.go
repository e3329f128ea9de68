package repositories

import (
	"context"
	"errors"

	"kiranaledger/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepositoryInterface interface {
	GetByShopAndDate(ctx context.Context, shopkeeperID, date string) (*db_models.DailyBatch, error)
	Create(ctx context.Context, batch *db_models.DailyBatch) error
	// RefreshAggregate re-points an uncommitted batch at newly aggregated
	// content. Returns false once the chain result landed; a committed
	// row's hash and total must not move.
	RefreshAggregate(ctx context.Context, id uuid.UUID, totalMinor int64, count int, hash string) (bool, error)
	// SetBlockchainResult persists the batch commit exactly once, same CAS
	// contract as the transaction ledger.
	SetBlockchainResult(ctx context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error)
}

func NewBatchRepository(db *gorm.DB) BatchRepositoryInterface {
	return &BatchRepository{db: db}
}

type BatchRepository struct {
	db *gorm.DB
}

func (r *BatchRepository) GetByShopAndDate(ctx context.Context, shopkeeperID, date string) (*db_models.DailyBatch, error) {
	var batch db_models.DailyBatch
	err := r.db.WithContext(ctx).
		Where("shopkeeper_id = ? AND date = ?", shopkeeperID, date).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *BatchRepository) Create(ctx context.Context, batch *db_models.DailyBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *BatchRepository) RefreshAggregate(ctx context.Context, id uuid.UUID, totalMinor int64, count int, hash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.DailyBatch{}).
		Where("id = ? AND blockchain_tx_id IS NULL", id).
		Updates(map[string]interface{}{
			"total_amount_minor": totalMinor,
			"transaction_count":  count,
			"batch_hash":         hash,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BatchRepository) SetBlockchainResult(ctx context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.DailyBatch{}).
		Where("id = ? AND blockchain_tx_id IS NULL", id).
		Updates(map[string]interface{}{
			"blockchain_tx_id":        txHash,
			"blockchain_block_number": blockNumber,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
