package repositories

import (
	"context"
	"errors"
	"time"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerRepositoryInterface interface {
	CreateTransaction(ctx context.Context, txn *db_models.Transaction) error
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*db_models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status db_models.TransactionStatus) error
	// MarkConfirmedVerified applies a customer confirmation: the transaction
	// becomes verified and chain-eligible in one update.
	MarkConfirmedVerified(ctx context.Context, id uuid.UUID) error
	// SetBlockchainResult records the on-chain write exactly once. It only
	// updates rows whose blockchain_tx_id is still null and reports whether
	// this caller won; a false return means the hash was already persisted.
	SetBlockchainResult(ctx context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error)
	AppendVerificationError(ctx context.Context, id uuid.UUID, detail string) error
	ListVerifiedSales(ctx context.Context, shopkeeperID string, dayStart, dayEnd int64) ([]db_models.Transaction, error)
	BuildShopkeeperHistory(ctx context.Context, shopkeeperID string, at time.Time) (*ShopkeeperHistory, error)
}

func NewLedgerRepository(db *gorm.DB, products ProductRepositoryInterface) LedgerRepositoryInterface {
	return &LedgerRepository{db: db, products: products}
}

type LedgerRepository struct {
	db       *gorm.DB
	products ProductRepositoryInterface
}

func (r *LedgerRepository) CreateTransaction(ctx context.Context, txn *db_models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *LedgerRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *LedgerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status db_models.TransactionStatus) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *LedgerRepository) MarkConfirmedVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"customer_confirmed":  true,
			"status":              db_models.TxnStatusVerified,
			"verification_status": db_models.VerificationVerified,
			"storage_location":    db_models.StorageBlockchain,
		}).Error
}

func (r *LedgerRepository) SetBlockchainResult(ctx context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ? AND blockchain_tx_id IS NULL", id).
		Updates(map[string]interface{}{
			"blockchain_tx_id":        txHash,
			"blockchain_block_number": blockNumber,
			"status":                  db_models.TxnStatusCompleted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LedgerRepository) AppendVerificationError(ctx context.Context, id uuid.UUID, detail string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ?", id).
		Update("verification_metadata",
			gorm.Expr(`verification_metadata || jsonb_build_object('last_error', ?::text, 'last_error_at', ?::bigint)`,
				detail, time.Now().Unix())).Error
}

func (r *LedgerRepository) ListVerifiedSales(ctx context.Context, shopkeeperID string, dayStart, dayEnd int64) ([]db_models.Transaction, error) {
	var sales []db_models.Transaction
	err := r.db.WithContext(ctx).
		Where("shopkeeper_id = ? AND type = ? AND verification_status = ? AND occurred_at >= ? AND occurred_at < ?",
			shopkeeperID, db_models.TxnTypeSale, db_models.VerificationVerified, dayStart, dayEnd).
		Order("occurred_at ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// BuildShopkeeperHistory derives the fraud-scoring inputs from the ledger and
// the product catalog. "Today" is the IST calendar day containing at.
func (r *LedgerRepository) BuildShopkeeperHistory(ctx context.Context, shopkeeperID string, at time.Time) (*ShopkeeperHistory, error) {
	history := &ShopkeeperHistory{
		CreditCountToday: map[string]int{},
		PurchaseCounts:   map[string]int{},
		CatalogPrices:    map[string]int64{},
	}

	dayStart, dayEnd := dayBounds(at)
	db := r.db.WithContext(ctx)

	// Day buckets are shifted by the IST offset so trading days line up with
	// shop-local calendar days.
	var daily struct {
		Avg float64
	}
	err := db.Raw(`
		SELECT COALESCE(AVG(day_total), 0) AS avg FROM (
			SELECT SUM(amount_minor) AS day_total
			FROM transactions
			WHERE shopkeeper_id = ? AND type = ?
			GROUP BY ((occurred_at + 19800) / 86400)
		) d`, shopkeeperID, db_models.TxnTypeSale).Scan(&daily).Error
	if err != nil {
		return nil, err
	}
	history.AverageDailySales = int64(daily.Avg)

	type countRow struct {
		CustomerID string
		N          int
	}

	var credits []countRow
	err = db.Model(&db_models.Transaction{}).
		Select("customer_id, COUNT(*) AS n").
		Where("shopkeeper_id = ? AND type = ? AND occurred_at >= ? AND occurred_at < ?",
			shopkeeperID, db_models.TxnTypeCredit, dayStart, dayEnd).
		Group("customer_id").
		Scan(&credits).Error
	if err != nil {
		return nil, err
	}
	for _, row := range credits {
		history.CreditCountToday[row.CustomerID] = row.N
	}

	var purchases []countRow
	err = db.Model(&db_models.Transaction{}).
		Select("customer_id, COUNT(*) AS n").
		Where("shopkeeper_id = ?", shopkeeperID).
		Group("customer_id").
		Scan(&purchases).Error
	if err != nil {
		return nil, err
	}
	for _, row := range purchases {
		history.PurchaseCounts[row.CustomerID] = row.N
	}

	catalog, err := r.products.GetCatalogPrices(ctx, shopkeeperID)
	if err != nil {
		return nil, err
	}
	history.CatalogPrices = catalog

	var todayTotal int64
	err = db.Model(&db_models.Transaction{}).
		Where("shopkeeper_id = ? AND type = ? AND occurred_at >= ? AND occurred_at < ?",
			shopkeeperID, db_models.TxnTypeSale, dayStart, dayEnd).
		Select("COALESCE(SUM(amount_minor), 0)").
		Scan(&todayTotal).Error
	if err != nil {
		return nil, err
	}
	history.SalesTodayTotal = todayTotal

	var total int64
	err = db.Model(&db_models.Transaction{}).
		Where("shopkeeper_id = ?", shopkeeperID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}
	history.TotalTransactions = total

	return history, nil
}

func dayBounds(at time.Time) (int64, int64) {
	return utils.DayBoundsIST(at)
}
