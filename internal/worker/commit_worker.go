package worker

import (
	"context"
	"sync"

	"kiranaledger/internal/chain"
	"kiranaledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type JobKind string

const (
	JobRecordTransaction JobKind = "record_transaction"
	JobRecordBatch       JobKind = "record_batch"
)

// CommitJob is one asynchronous chain submission. The HTTP response has
// already been returned by the time a job runs; the ledger row is updated
// when the write completes or fails.
type CommitJob struct {
	Kind JobKind

	TransactionID uuid.UUID
	BatchID       uuid.UUID

	ContentHash string
	ShopAddress string
	AmountMinor int64
	TxType      chain.TxType
}

type CommitQueueInterface interface {
	// Enqueue hands a job to the pool without blocking the caller; false
	// means the queue is saturated and the record stays in its pre-write
	// storage location.
	Enqueue(job CommitJob) bool
}

// CommitPool is the bounded worker pool that performs blockchain submissions
// off the request path. Receipt waits of up to two minutes happen here, never
// on a request-handling goroutine.
type CommitPool struct {
	jobs    chan CommitJob
	workers int

	writer  chain.LedgerWriter
	ledger  repositories.LedgerRepositoryInterface
	batches repositories.BatchRepositoryInterface

	wg  sync.WaitGroup
	log zerolog.Logger
}

func NewCommitPool(
	workers int,
	queueDepth int,
	writer chain.LedgerWriter,
	ledger repositories.LedgerRepositoryInterface,
	batches repositories.BatchRepositoryInterface,
	log zerolog.Logger,
) *CommitPool {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	return &CommitPool{
		jobs:    make(chan CommitJob, queueDepth),
		workers: workers,
		writer:  writer,
		ledger:  ledger,
		batches: batches,
		log:     log.With().Str("component", "commit_pool").Logger(),
	}
}

func (p *CommitPool) Enqueue(job CommitJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn().
			Str("kind", string(job.Kind)).
			Str("transaction_id", job.TransactionID.String()).
			Msg("commit queue saturated; submission dropped, record stays in database")
		return false
	}
}

func (p *CommitPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	p.log.Info().Int("workers", p.workers).Msg("commit pool started")
}

func (p *CommitPool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.log.Info().Msg("commit pool drained")
}

func (p *CommitPool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		// Jobs outlive the originating request; they run on a background
		// context so an HTTP disconnect cannot abort a broadcast.
		p.process(context.Background(), job)
	}
}

func (p *CommitPool) process(ctx context.Context, job CommitJob) {
	switch job.Kind {
	case JobRecordTransaction:
		p.processTransaction(ctx, job)
	case JobRecordBatch:
		p.processBatch(ctx, job)
	default:
		p.log.Error().Str("kind", string(job.Kind)).Msg("unknown commit job kind")
	}
}

func (p *CommitPool) processTransaction(ctx context.Context, job CommitJob) {
	log := p.log.With().Str("transaction_id", job.TransactionID.String()).Logger()

	// Idempotency gate: a transaction whose blockchain_tx_id is already set
	// is never handed to a second write.
	txn, err := p.ledger.GetTransactionByID(ctx, job.TransactionID)
	if err != nil {
		log.Error().Err(err).Msg("commit skipped: cannot load transaction")
		return
	}
	if txn.BlockchainTxID != nil {
		log.Debug().Str("tx_hash", *txn.BlockchainTxID).Msg("commit skipped: already on chain")
		return
	}

	if !p.writer.Available() {
		log.Info().Msg("chain offline; transaction stays in database storage")
		return
	}

	result, err := p.writer.RecordTransaction(ctx, job.ContentHash, job.ShopAddress, job.AmountMinor, job.TxType)
	if err != nil {
		// No retry wraps the write itself; the failure is recorded and the
		// triggering step must be replayed from outside.
		log.Error().Err(err).Str("error_kind", string(chain.KindOf(err))).Msg("chain write failed")
		if dbErr := p.ledger.AppendVerificationError(ctx, job.TransactionID, err.Error()); dbErr != nil {
			log.Error().Err(dbErr).Msg("failed to record chain error on transaction")
		}
		return
	}

	won, err := p.ledger.SetBlockchainResult(ctx, job.TransactionID, result.TxHash, result.BlockNumber)
	if err != nil {
		// Crash window: the chain write happened but the hash could not be
		// persisted. Surfaced loudly; this is the only duplicate-write risk.
		log.Error().Err(err).Str("tx_hash", result.TxHash).Msg("chain write committed but not persisted")
		return
	}
	if !won {
		log.Warn().Str("tx_hash", result.TxHash).Msg("duplicate chain write detected; prior hash kept")
		return
	}

	log.Info().Str("tx_hash", result.TxHash).Int64("block", result.BlockNumber).Msg("transaction committed to chain")
}

func (p *CommitPool) processBatch(ctx context.Context, job CommitJob) {
	log := p.log.With().Str("batch_id", job.BatchID.String()).Logger()

	if !p.writer.Available() {
		log.Info().Msg("chain offline; daily batch stays in database")
		return
	}

	result, err := p.writer.RecordBatchTransactions(ctx, job.ContentHash, job.ShopAddress, job.AmountMinor)
	if err != nil {
		log.Error().Err(err).Str("error_kind", string(chain.KindOf(err))).Msg("batch chain write failed")
		return
	}

	won, err := p.batches.SetBlockchainResult(ctx, job.BatchID, result.TxHash, result.BlockNumber)
	if err != nil {
		log.Error().Err(err).Str("tx_hash", result.TxHash).Msg("batch committed but not persisted")
		return
	}
	if !won {
		log.Warn().Str("tx_hash", result.TxHash).Msg("duplicate batch write detected; prior hash kept")
		return
	}

	log.Info().Str("tx_hash", result.TxHash).Int64("block", result.BlockNumber).Msg("daily batch committed to chain")
}
