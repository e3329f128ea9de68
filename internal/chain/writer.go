package chain

import (
	"context"
	"math/big"
)

// TxType is the on-contract transaction-type code.
type TxType uint8

const (
	TxTypeSale TxType = iota
	TxTypeCredit
	TxTypeRepay
)

// CommitResult is returned by every successful on-chain write.
type CommitResult struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

// OnChainTransaction mirrors the contract's stored transaction record.
type OnChainTransaction struct {
	ID             int64  `json:"id"`
	TranscriptHash string `json:"transcript_hash"`
	ShopAddress    string `json:"shop_address"`
	AmountMinor    int64  `json:"amount_minor"`
	TxType         TxType `json:"tx_type"`
	Timestamp      int64  `json:"timestamp"`
}

// Cooperative mirrors the contract's cooperative record.
type Cooperative struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	MemberCount int64    `json:"member_count"`
	Members     []string `json:"members,omitempty"`
}

// LedgerWriter performs irreversible writes against the smart-contract
// ledger. The client does no deduplication: callers must check the ledger
// record's blockchain_tx_id before invoking a write and persist the returned
// hash before treating the operation as complete.
type LedgerWriter interface {
	// Available reports whether a live chain backend is configured. The
	// offline stub returns false and the pipeline degrades to database-only
	// storage.
	Available() bool

	RecordTransaction(ctx context.Context, transcriptHash, shopAddress string, amountMinor int64, txType TxType) (*CommitResult, error)
	RecordBatchTransactions(ctx context.Context, batchHash, shopAddress string, totalAmountMinor int64) (*CommitResult, error)
	RegisterShopkeeper(ctx context.Context, shopAddress, name string) (*CommitResult, error)
	UpdateCreditScore(ctx context.Context, customerAddress string, score int64) (*CommitResult, error)
	CreateCooperative(ctx context.Context, name string) (*CommitResult, error)
	JoinCooperative(ctx context.Context, cooperativeID int64, memberAddress string) (*CommitResult, error)
}

// LedgerReader is the side-effect-free query surface over current chain state.
type LedgerReader interface {
	GetTransaction(ctx context.Context, id int64) (*OnChainTransaction, error)
	GetCreditScore(ctx context.Context, address string) (int64, error)
	IsShopkeeperRegistered(ctx context.Context, address string) (bool, error)
	GetCooperative(ctx context.Context, id int64) (*Cooperative, error)
	GetNextTransactionID(ctx context.Context) (int64, error)
	Balance(ctx context.Context, address string) (*big.Int, error)
}
