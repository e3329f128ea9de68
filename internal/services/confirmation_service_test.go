package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/worker"
	"kiranaledger/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmationFixture struct {
	svc           ConfirmationServiceInterface
	ledger        *mockLedgerRepo
	confirmations *mockConfirmationRepo
	messaging     *mockMessaging
	notifier      *mockNotifier
	commits       *mockCommitQueue
}

func newConfirmationFixture() *confirmationFixture {
	f := &confirmationFixture{
		ledger:        newMockLedgerRepo(),
		confirmations: newMockConfirmationRepo(),
		messaging:     &mockMessaging{},
		notifier:      &mockNotifier{},
		commits:       &mockCommitQueue{},
	}
	f.svc = NewConfirmationService(
		f.confirmations, f.ledger, f.messaging, f.notifier, f.commits,
		logger.NewWithWriter(io.Discard))
	return f
}

func (f *confirmationFixture) seedPendingCredit(t *testing.T) *db_models.Transaction {
	t.Helper()
	txn := &db_models.Transaction{
		Type:               db_models.TxnTypeCredit,
		AmountMinor:        250_000,
		ShopkeeperID:       "shop-1",
		CustomerID:         "cust-1",
		ShopkeeperAddress:  "0x1111111111111111111111111111111111111111",
		TranscriptHash:     strings.Repeat("ab", 32),
		Status:             db_models.TxnStatusPending,
		VerificationStatus: db_models.VerificationPending,
		StorageLocation:    db_models.StorageDatabasePending,
	}
	require.NoError(t, f.ledger.CreateTransaction(context.Background(), txn))
	return txn
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		body        string
		wantStatus  db_models.ConfirmationStatus
		wantMatched bool
	}{
		{"YES", db_models.ConfirmationConfirmed, true},
		{"yes", db_models.ConfirmationConfirmed, true},
		{" y ", db_models.ConfirmationConfirmed, true},
		{"Confirm", db_models.ConfirmationConfirmed, true},
		{"ok", db_models.ConfirmationConfirmed, true},
		{"NO", db_models.ConfirmationRejected, true},
		{"n", db_models.ConfirmationRejected, true},
		{"REJECT", db_models.ConfirmationRejected, true},
		{"cancel", db_models.ConfirmationRejected, true},
		{"maybe", "", false},
		{"", "", false},
		{"yes please", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			status, matched := ParseReply(tt.body)
			assert.Equal(t, tt.wantMatched, matched)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestOpenConfirmation(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)

	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "+91 98765 43210", "Sharma Kirana")
	require.NoError(t, err)

	assert.Equal(t, "919876543210", pc.Contact)
	assert.Equal(t, db_models.ConfirmationPending, pc.Status)
	assert.Greater(t, pc.ExpiresAt, time.Now().Unix())
	assert.LessOrEqual(t, pc.ExpiresAt, time.Now().Add(24*time.Hour+time.Minute).Unix())

	sent := f.messaging.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "919876543210", sent[0].To)
	assert.Contains(t, sent[0].Body, "Sharma Kirana")
	assert.Contains(t, sent[0].Body, "YES")
}

func TestOpenConfirmationSupersedesPrior(t *testing.T) {
	f := newConfirmationFixture()
	txn1 := f.seedPendingCredit(t)
	txn2 := f.seedPendingCredit(t)

	first, err := f.svc.OpenConfirmation(context.Background(), txn1, "9876543210", "Sharma Kirana")
	require.NoError(t, err)
	second, err := f.svc.OpenConfirmation(context.Background(), txn2, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	old, err := f.confirmations.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.ConfirmationExpired, old.Status)

	active, err := f.confirmations.GetActiveByContact(context.Background(), "919876543210")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

// Unix-second timestamps can tie; the lookup must still pick one
// confirmation deterministically.
func TestGetActiveByContactSameSecondTiebreak(t *testing.T) {
	f := newConfirmationFixture()

	a := &db_models.PendingConfirmation{
		Contact:   "919876543210",
		Status:    db_models.ConfirmationPending,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	b := &db_models.PendingConfirmation{
		Contact:   "919876543210",
		Status:    db_models.ConfirmationPending,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	require.NoError(t, f.confirmations.Create(context.Background(), a))
	require.NoError(t, f.confirmations.Create(context.Background(), b))

	f.confirmations.mu.Lock()
	f.confirmations.confirmations[a.ID].CreatedAt = 1_000
	f.confirmations.confirmations[b.ID].CreatedAt = 1_000
	f.confirmations.mu.Unlock()

	want := a.ID
	if b.ID.String() > a.ID.String() {
		want = b.ID
	}
	for i := 0; i < 5; i++ {
		got, err := f.confirmations.GetActiveByContact(context.Background(), "919876543210")
		require.NoError(t, err)
		assert.Equal(t, want, got.ID)
	}
}

func TestOpenConfirmationSurvivesMessagingFailure(t *testing.T) {
	f := newConfirmationFixture()
	f.messaging.fail = true
	txn := f.seedPendingCredit(t)

	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err, "messaging failure must not abort the confirmation record")
	assert.Equal(t, db_models.ConfirmationPending, pc.Status)
}

func TestHandleInboundReplyConfirms(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	_, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	outcome, err := f.svc.HandleInboundReply(context.Background(), "+919876543210", "YES", "wamid-1")
	require.NoError(t, err)
	assert.True(t, outcome.Matched)
	assert.Equal(t, "confirmed", outcome.Action)

	stored, err := f.ledger.GetTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.CustomerConfirmed)
	assert.Equal(t, db_models.TxnStatusVerified, stored.Status)
	assert.Equal(t, db_models.VerificationVerified, stored.VerificationStatus)
	assert.Equal(t, db_models.StorageBlockchain, stored.StorageLocation)

	jobs := f.commits.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, worker.JobRecordTransaction, jobs[0].Kind)
	assert.Equal(t, txn.ID, jobs[0].TransactionID)
}

func TestHandleInboundReplyRejects(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	_, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	outcome, err := f.svc.HandleInboundReply(context.Background(), "9876543210", "no", "wamid-2")
	require.NoError(t, err)
	assert.True(t, outcome.Matched)
	assert.Equal(t, "rejected", outcome.Action)

	stored, err := f.ledger.GetTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.TxnStatusDisputed, stored.Status)
	assert.Empty(t, f.commits.Jobs(), "a rejected credit never reaches the chain queue")
}

func TestHandleInboundReplyReprompts(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	outcome, err := f.svc.HandleInboundReply(context.Background(), "9876543210", "kya?", "wamid-3")
	require.NoError(t, err)
	assert.False(t, outcome.Matched)
	assert.Equal(t, "reprompted", outcome.Action)

	// Confirmation unchanged, one extra outbound message.
	stored, err := f.confirmations.GetByID(context.Background(), pc.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.ConfirmationPending, stored.Status)
	assert.Len(t, f.messaging.Sent(), 2)
}

func TestHandleInboundReplyWithoutActiveConfirmation(t *testing.T) {
	f := newConfirmationFixture()

	outcome, err := f.svc.HandleInboundReply(context.Background(), "9876543210", "YES", "wamid-4")
	require.NoError(t, err)
	assert.False(t, outcome.Matched)
	assert.Equal(t, "ignored", outcome.Action)
}

func TestHandleInboundReplyRedeliveryIsIdempotent(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	_, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	_, err = f.svc.HandleInboundReply(context.Background(), "9876543210", "YES", "wamid-5")
	require.NoError(t, err)

	// Provider redelivers the same message; confirmation is already terminal
	// so the reply is ignored and no second commit job is queued.
	outcome, err := f.svc.HandleInboundReply(context.Background(), "9876543210", "YES", "wamid-5")
	require.NoError(t, err)
	assert.Equal(t, "ignored", outcome.Action)
	assert.Len(t, f.commits.Jobs(), 1)
}

func TestResolveLosesRaceToSweep(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	// The sweep closes the confirmation first.
	won, err := f.confirmations.ResolveCAS(context.Background(), pc.ID, db_models.ConfirmationExpired)
	require.NoError(t, err)
	require.True(t, won)

	// A late reply resolves nothing; the expired status is final.
	require.NoError(t, f.svc.Resolve(context.Background(), pc.ID, db_models.ConfirmationConfirmed))

	stored, err := f.confirmations.GetByID(context.Background(), pc.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.ConfirmationExpired, stored.Status)

	tx, err := f.ledger.GetTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.TxnStatusPending, tx.Status, "losing resolver must not touch the transaction")
	assert.Empty(t, f.commits.Jobs())
}

func TestResolveRejectsInvalidOutcome(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	assert.Error(t, f.svc.Resolve(context.Background(), pc.ID, db_models.ConfirmationExpired))
	assert.Error(t, f.svc.Resolve(context.Background(), pc.ID, db_models.ConfirmationPending))
}

func TestSweepExpired(t *testing.T) {
	f := newConfirmationFixture()
	txn := f.seedPendingCredit(t)
	pc, err := f.svc.OpenConfirmation(context.Background(), txn, "9876543210", "Sharma Kirana")
	require.NoError(t, err)

	// Force the deadline into the past.
	f.confirmations.mu.Lock()
	f.confirmations.confirmations[pc.ID].ExpiresAt = time.Now().Add(-time.Minute).Unix()
	f.confirmations.mu.Unlock()

	swept, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	stored, err := f.confirmations.GetByID(context.Background(), pc.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.ConfirmationExpired, stored.Status)

	// Linked transaction is left pending for operator follow-up.
	tx, err := f.ledger.GetTransactionByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, db_models.TxnStatusPending, tx.Status)

	// Second sweep finds nothing.
	swept, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
}

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+91 98765 43210", "919876543210"},
		{"9876543210", "919876543210"},
		{"91-98765-43210", "919876543210"},
		{"whatsapp:+919876543210", "919876543210"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContact(tt.in))
		})
	}
}
