package services

import (
	"context"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/internal/worker"
	"kiranaledger/pkg/utils"

	"github.com/rs/zerolog"
)

// DailyBatchResult is the outcome of folding one shopkeeper-day of low-risk
// sales into a single content-hashed chain write.
type DailyBatchResult struct {
	ShopkeeperID       string `json:"shopkeeper_id"`
	Date               string `json:"date"`
	TotalAmountMinor   int64  `json:"total_amount_minor"`
	TransactionCount   int    `json:"transaction_count"`
	BatchHash          string `json:"batch_hash"`
	ReadyForBlockchain bool   `json:"ready_for_blockchain"`
}

type AggregationServiceInterface interface {
	// AggregateDailySales is the pure fold: deterministic batch hash over
	// shopkeeper + date + total + count. Empty input is an error, not an
	// empty success.
	AggregateDailySales(shopkeeperID, date string, sales []db_models.Transaction) (*DailyBatchResult, error)
	// CommitDailyBatch aggregates the day's verified sales and submits the
	// batch, once per shopkeeper per day.
	CommitDailyBatch(ctx context.Context, shopkeeperID, date string) (*DailyBatchResult, error)
}

type AggregationService struct {
	ledger  repositories.LedgerRepositoryInterface
	batches repositories.BatchRepositoryInterface
	commits worker.CommitQueueInterface
	log     zerolog.Logger
}

func NewAggregationService(
	ledger repositories.LedgerRepositoryInterface,
	batches repositories.BatchRepositoryInterface,
	commits worker.CommitQueueInterface,
	log zerolog.Logger,
) AggregationServiceInterface {
	return &AggregationService{
		ledger:  ledger,
		batches: batches,
		commits: commits,
		log:     log.With().Str("component", "daily_aggregator").Logger(),
	}
}

func (s *AggregationService) AggregateDailySales(shopkeeperID, date string, sales []db_models.Transaction) (*DailyBatchResult, error) {
	if len(sales) == 0 {
		return nil, utils.ErrEmptyBatch
	}

	var total int64
	for _, sale := range sales {
		total += sale.AmountMinor
	}

	return &DailyBatchResult{
		ShopkeeperID:       shopkeeperID,
		Date:               date,
		TotalAmountMinor:   total,
		TransactionCount:   len(sales),
		BatchHash:          utils.CalculateBatchHash(shopkeeperID, date, total, len(sales)),
		ReadyForBlockchain: true,
	}, nil
}

func (s *AggregationService) CommitDailyBatch(ctx context.Context, shopkeeperID, date string) (*DailyBatchResult, error) {
	day, err := utils.ParseBatchDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.batches.GetByShopAndDate(ctx, shopkeeperID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.BlockchainTxID != nil {
		return nil, utils.ErrBatchAlreadyCommitted
	}

	dayStart, dayEnd := utils.DayBoundsIST(day)
	sales, err := s.ledger.ListVerifiedSales(ctx, shopkeeperID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	result, err := s.AggregateDailySales(shopkeeperID, date, sales)
	if err != nil {
		return nil, err
	}

	batch := existing
	if batch == nil {
		batch = &db_models.DailyBatch{
			ShopkeeperID:     shopkeeperID,
			Date:             date,
			TotalAmountMinor: result.TotalAmountMinor,
			TransactionCount: result.TransactionCount,
			BatchHash:        result.BatchHash,
		}
		if err := s.batches.Create(ctx, batch); err != nil {
			return nil, err
		}
	} else if batch.BatchHash != result.BatchHash {
		// The day's sales changed since the row was created; the stored
		// aggregate must describe the content going on chain.
		refreshed, err := s.batches.RefreshAggregate(ctx, batch.ID,
			result.TotalAmountMinor, result.TransactionCount, result.BatchHash)
		if err != nil {
			return nil, err
		}
		if !refreshed {
			// A worker landed the commit between the read above and now.
			return nil, utils.ErrBatchAlreadyCommitted
		}
	}

	shopAddress := ""
	if len(sales) > 0 {
		shopAddress = sales[0].ShopkeeperAddress
	}

	s.commits.Enqueue(worker.CommitJob{
		Kind:        worker.JobRecordBatch,
		BatchID:     batch.ID,
		ContentHash: result.BatchHash,
		ShopAddress: shopAddress,
		AmountMinor: result.TotalAmountMinor,
	})

	s.log.Info().
		Str("shopkeeper_id", shopkeeperID).
		Str("date", date).
		Int("sales", result.TransactionCount).
		Int64("total_minor", result.TotalAmountMinor).
		Msg("daily batch queued for chain commit")

	return result, nil
}
