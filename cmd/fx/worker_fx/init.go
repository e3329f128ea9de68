package worker_fx

import (
	"context"
	"os"
	"strconv"

	"kiranaledger/internal/chain"
	"kiranaledger/internal/repositories"
	"kiranaledger/internal/worker"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(provideCommitPool),
	fx.Provide(provideCommitQueue),
	fx.Invoke(registerLifecycle),
)

func provideCommitPool(
	writer chain.LedgerWriter,
	ledger repositories.LedgerRepositoryInterface,
	batches repositories.BatchRepositoryInterface,
	log zerolog.Logger,
) *worker.CommitPool {
	workers, _ := strconv.Atoi(os.Getenv("COMMIT_WORKERS"))
	queueDepth, _ := strconv.Atoi(os.Getenv("COMMIT_QUEUE_DEPTH"))
	return worker.NewCommitPool(workers, queueDepth, writer, ledger, batches, log)
}

func provideCommitQueue(pool *worker.CommitPool) worker.CommitQueueInterface {
	return pool
}

func registerLifecycle(lc fx.Lifecycle, pool *worker.CommitPool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			pool.Stop()
			return nil
		},
	})
}
