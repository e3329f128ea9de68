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

type ConfirmationRepositoryInterface interface {
	Create(ctx context.Context, pc *db_models.PendingConfirmation) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.PendingConfirmation, error)
	// GetActiveByContact returns the newest pending, unexpired confirmation
	// for the contact, or ErrConfirmationNotFound.
	GetActiveByContact(ctx context.Context, contact string) (*db_models.PendingConfirmation, error)
	// SupersedeActive expires any still-pending confirmations for the contact;
	// creating a new confirmation invalidates the old ones.
	SupersedeActive(ctx context.Context, contact string) error
	// ResolveCAS transitions id out of pending exactly once. Returns false if
	// another writer (reply or sweep) already closed it.
	ResolveCAS(ctx context.Context, id uuid.UUID, to db_models.ConfirmationStatus) (bool, error)
	// SweepExpired marks every pending confirmation past its deadline as
	// expired and returns the affected rows for logging.
	SweepExpired(ctx context.Context, now time.Time) ([]db_models.PendingConfirmation, error)
}

func NewConfirmationRepository(db *gorm.DB) ConfirmationRepositoryInterface {
	return &ConfirmationRepository{db: db}
}

type ConfirmationRepository struct {
	db *gorm.DB
}

func (r *ConfirmationRepository) Create(ctx context.Context, pc *db_models.PendingConfirmation) error {
	return r.db.WithContext(ctx).Create(pc).Error
}

func (r *ConfirmationRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.PendingConfirmation, error) {
	var pc db_models.PendingConfirmation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrConfirmationNotFound
		}
		return nil, err
	}
	return &pc, nil
}

func (r *ConfirmationRepository) GetActiveByContact(ctx context.Context, contact string) (*db_models.PendingConfirmation, error) {
	var pc db_models.PendingConfirmation
	err := r.db.WithContext(ctx).
		Where("contact = ? AND status = ? AND expires_at > ?",
			contact, db_models.ConfirmationPending, time.Now().Unix()).
		// created_at is unix seconds; id breaks same-second ties.
		Order("created_at DESC, id DESC").
		First(&pc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrConfirmationNotFound
		}
		return nil, err
	}
	return &pc, nil
}

func (r *ConfirmationRepository) SupersedeActive(ctx context.Context, contact string) error {
	now := time.Now().Unix()
	return r.db.WithContext(ctx).
		Model(&db_models.PendingConfirmation{}).
		Where("contact = ? AND status = ?", contact, db_models.ConfirmationPending).
		Updates(map[string]interface{}{
			"status":      db_models.ConfirmationExpired,
			"resolved_at": now,
		}).Error
}

func (r *ConfirmationRepository) ResolveCAS(ctx context.Context, id uuid.UUID, to db_models.ConfirmationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.PendingConfirmation{}).
		Where("id = ? AND status = ?", id, db_models.ConfirmationPending).
		Updates(map[string]interface{}{
			"status":      to,
			"resolved_at": time.Now().Unix(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ConfirmationRepository) SweepExpired(ctx context.Context, now time.Time) ([]db_models.PendingConfirmation, error) {
	var expired []db_models.PendingConfirmation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", db_models.ConfirmationPending, now.Unix()).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	swept := make([]db_models.PendingConfirmation, 0, len(expired))
	for _, pc := range expired {
		// Same CAS as inbound replies; a racing reply wins and the sweep
		// silently drops that row.
		won, err := r.ResolveCAS(ctx, pc.ID, db_models.ConfirmationExpired)
		if err != nil {
			return swept, err
		}
		if won {
			swept = append(swept, pc)
		}
	}
	return swept, nil
}
