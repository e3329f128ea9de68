package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/rs/zerolog"
)

var errOffline = errors.New("chain client running in offline mode")

// NoopClient is the offline stub selected at construction when no RPC
// endpoint or signing key is configured. Every operation reports the chain
// as unavailable; records stay in their database storage location.
type NoopClient struct {
	log zerolog.Logger
}

func NewNoopClient(log zerolog.Logger) *NoopClient {
	return &NoopClient{log: log.With().Str("component", "chain_noop").Logger()}
}

func (n *NoopClient) Available() bool { return false }

func (n *NoopClient) unavailable(op string) error {
	n.log.Debug().Str("op", op).Msg("chain write skipped: offline mode")
	return newError(ErrRpcUnavailable, op, errOffline)
}

func (n *NoopClient) RecordTransaction(ctx context.Context, transcriptHash, shopAddress string, amountMinor int64, txType TxType) (*CommitResult, error) {
	return nil, n.unavailable("recordTransaction")
}

func (n *NoopClient) RecordBatchTransactions(ctx context.Context, batchHash, shopAddress string, totalAmountMinor int64) (*CommitResult, error) {
	return nil, n.unavailable("recordBatchTransactions")
}

func (n *NoopClient) RegisterShopkeeper(ctx context.Context, shopAddress, name string) (*CommitResult, error) {
	return nil, n.unavailable("registerShopkeeper")
}

func (n *NoopClient) UpdateCreditScore(ctx context.Context, customerAddress string, score int64) (*CommitResult, error) {
	return nil, n.unavailable("updateCreditScore")
}

func (n *NoopClient) CreateCooperative(ctx context.Context, name string) (*CommitResult, error) {
	return nil, n.unavailable("createCooperative")
}

func (n *NoopClient) JoinCooperative(ctx context.Context, cooperativeID int64, memberAddress string) (*CommitResult, error) {
	return nil, n.unavailable("joinCooperative")
}

func (n *NoopClient) GetTransaction(ctx context.Context, id int64) (*OnChainTransaction, error) {
	return nil, n.unavailable("getTransaction")
}

func (n *NoopClient) GetCreditScore(ctx context.Context, address string) (int64, error) {
	return 0, n.unavailable("getCreditScore")
}

func (n *NoopClient) IsShopkeeperRegistered(ctx context.Context, address string) (bool, error) {
	return false, n.unavailable("isShopkeeperRegistered")
}

func (n *NoopClient) GetCooperative(ctx context.Context, id int64) (*Cooperative, error) {
	return nil, n.unavailable("getCooperative")
}

func (n *NoopClient) GetNextTransactionID(ctx context.Context) (int64, error) {
	return 0, n.unavailable("getNextTransactionId")
}

func (n *NoopClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	return nil, n.unavailable("balanceAt")
}
