package services

import (
	"context"
	"sync"
	"time"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/internal/worker"
	"kiranaledger/pkg/utils"

	"github.com/google/uuid"
)

// In-memory repository doubles. They reproduce the CAS contracts of the real
// gorm repositories so race-ordering tests mean something.

type mockLedgerRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*db_models.Transaction
	verifiedSale []db_models.Transaction
	history      *repositories.ShopkeeperHistory
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{transactions: map[uuid.UUID]*db_models.Transaction{}}
}

func (m *mockLedgerRepo) CreateTransaction(_ context.Context, txn *db_models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	cp := *txn
	m.transactions[txn.ID] = &cp
	return nil
}

func (m *mockLedgerRepo) GetTransactionByID(_ context.Context, id uuid.UUID) (*db_models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, utils.ErrTransactionNotFound
	}
	cp := *txn
	return &cp, nil
}

func (m *mockLedgerRepo) UpdateStatus(_ context.Context, id uuid.UUID, status db_models.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return utils.ErrTransactionNotFound
	}
	txn.Status = status
	return nil
}

func (m *mockLedgerRepo) MarkConfirmedVerified(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return utils.ErrTransactionNotFound
	}
	txn.CustomerConfirmed = true
	txn.Status = db_models.TxnStatusVerified
	txn.VerificationStatus = db_models.VerificationVerified
	txn.StorageLocation = db_models.StorageBlockchain
	return nil
}

func (m *mockLedgerRepo) SetBlockchainResult(_ context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return false, utils.ErrTransactionNotFound
	}
	if txn.BlockchainTxID != nil {
		return false, nil
	}
	txn.BlockchainTxID = &txHash
	txn.BlockchainBlockNumber = &blockNumber
	txn.Status = db_models.TxnStatusCompleted
	return true, nil
}

func (m *mockLedgerRepo) AppendVerificationError(_ context.Context, id uuid.UUID, detail string) error {
	return nil
}

func (m *mockLedgerRepo) ListVerifiedSales(_ context.Context, _ string, _, _ int64) ([]db_models.Transaction, error) {
	return m.verifiedSale, nil
}

func (m *mockLedgerRepo) BuildShopkeeperHistory(_ context.Context, _ string, _ time.Time) (*repositories.ShopkeeperHistory, error) {
	if m.history != nil {
		return m.history, nil
	}
	return &repositories.ShopkeeperHistory{}, nil
}

type mockConfirmationRepo struct {
	mu            sync.Mutex
	confirmations map[uuid.UUID]*db_models.PendingConfirmation
}

func newMockConfirmationRepo() *mockConfirmationRepo {
	return &mockConfirmationRepo{confirmations: map[uuid.UUID]*db_models.PendingConfirmation{}}
}

func (m *mockConfirmationRepo) Create(_ context.Context, pc *db_models.PendingConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	pc.CreatedAt = time.Now().Unix()
	cp := *pc
	m.confirmations[pc.ID] = &cp
	return nil
}

func (m *mockConfirmationRepo) GetByID(_ context.Context, id uuid.UUID) (*db_models.PendingConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pc, ok := m.confirmations[id]
	if !ok {
		return nil, utils.ErrConfirmationNotFound
	}
	cp := *pc
	return &cp, nil
}

func (m *mockConfirmationRepo) GetActiveByContact(_ context.Context, contact string) (*db_models.PendingConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *db_models.PendingConfirmation
	now := time.Now().Unix()
	for _, pc := range m.confirmations {
		if pc.Contact != contact || pc.Status != db_models.ConfirmationPending || pc.ExpiresAt <= now {
			continue
		}
		if newest == nil || pc.CreatedAt > newest.CreatedAt ||
			(pc.CreatedAt == newest.CreatedAt && pc.ID.String() > newest.ID.String()) {
			newest = pc
		}
	}
	if newest == nil {
		return nil, utils.ErrConfirmationNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *mockConfirmationRepo) SupersedeActive(_ context.Context, contact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Unix()
	for _, pc := range m.confirmations {
		if pc.Contact == contact && pc.Status == db_models.ConfirmationPending {
			pc.Status = db_models.ConfirmationExpired
			pc.ResolvedAt = &now
		}
	}
	return nil
}

func (m *mockConfirmationRepo) ResolveCAS(_ context.Context, id uuid.UUID, to db_models.ConfirmationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pc, ok := m.confirmations[id]
	if !ok || pc.Status != db_models.ConfirmationPending {
		return false, nil
	}
	now := time.Now().Unix()
	pc.Status = to
	pc.ResolvedAt = &now
	return true, nil
}

func (m *mockConfirmationRepo) SweepExpired(_ context.Context, now time.Time) ([]db_models.PendingConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var swept []db_models.PendingConfirmation
	nowUnix := now.Unix()
	for _, pc := range m.confirmations {
		if pc.Status == db_models.ConfirmationPending && pc.ExpiresAt <= nowUnix {
			pc.Status = db_models.ConfirmationExpired
			pc.ResolvedAt = &nowUnix
			swept = append(swept, *pc)
		}
	}
	return swept, nil
}

type mockBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*db_models.DailyBatch
}

func newMockBatchRepo() *mockBatchRepo {
	return &mockBatchRepo{batches: map[uuid.UUID]*db_models.DailyBatch{}}
}

func (m *mockBatchRepo) GetByShopAndDate(_ context.Context, shopkeeperID, date string) (*db_models.DailyBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.batches {
		if b.ShopkeeperID == shopkeeperID && b.Date == date {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockBatchRepo) Create(_ context.Context, batch *db_models.DailyBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	cp := *batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *mockBatchRepo) RefreshAggregate(_ context.Context, id uuid.UUID, totalMinor int64, count int, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok || b.BlockchainTxID != nil {
		return false, nil
	}
	b.TotalAmountMinor = totalMinor
	b.TransactionCount = count
	b.BatchHash = hash
	return true, nil
}

func (m *mockBatchRepo) SetBlockchainResult(_ context.Context, id uuid.UUID, txHash string, blockNumber int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok || b.BlockchainTxID != nil {
		return false, nil
	}
	b.BlockchainTxID = &txHash
	b.BlockchainBlockNumber = &blockNumber
	return true, nil
}

type mockCommitQueue struct {
	mu   sync.Mutex
	jobs []worker.CommitJob
}

func (m *mockCommitQueue) Enqueue(job worker.CommitJob) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return true
}

func (m *mockCommitQueue) Jobs() []worker.CommitJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]worker.CommitJob(nil), m.jobs...)
}

type sentMessage struct {
	To   string
	Body string
}

type mockMessaging struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (m *mockMessaging) Send(_ context.Context, to, body string) (*MessageReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, context.DeadlineExceeded
	}
	m.sent = append(m.sent, sentMessage{To: to, Body: body})
	return &MessageReceipt{ID: "msg-1", Status: "queued"}, nil
}

func (m *mockMessaging) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type mockNotifier struct {
	mu       sync.Mutex
	notified []uuid.UUID
}

func (m *mockNotifier) NotifyConfirmed(_ context.Context, transactionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, transactionID)
	return nil
}
