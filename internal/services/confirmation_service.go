package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kiranaledger/internal/chain"
	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/internal/worker"
	"kiranaledger/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const confirmationTTL = 24 * time.Hour

// ReplyOutcome describes how one inbound message was handled.
type ReplyOutcome struct {
	Matched        bool                         `json:"matched"`
	Action         string                       `json:"action"` // confirmed | rejected | reprompted | ignored
	ConfirmationID *uuid.UUID                   `json:"confirmation_id,omitempty"`
	Status         db_models.ConfirmationStatus `json:"status,omitempty"`
}

type ConfirmationServiceInterface interface {
	// OpenConfirmation starts a time-boxed customer acknowledgement request
	// for a pending credit/repay transaction and prompts the customer over
	// the messaging channel. Any prior active confirmation for the same
	// contact is superseded.
	OpenConfirmation(ctx context.Context, txn *db_models.Transaction, contact, shopkeeperName string) (*db_models.PendingConfirmation, error)
	// HandleInboundReply resolves the contact's active confirmation from a
	// messaging webhook. Redeliveries of the same message are harmless: the
	// terminal transition happens at most once.
	HandleInboundReply(ctx context.Context, from, body, messageID string) (*ReplyOutcome, error)
	// Resolve closes a confirmation with the given outcome. First writer
	// wins against the expiry sweep; the loser's effect is discarded.
	Resolve(ctx context.Context, confirmationID uuid.UUID, outcome db_models.ConfirmationStatus) error
	// SweepExpired expires every pending confirmation past its deadline.
	// The linked transaction is left pending; see the warning log.
	SweepExpired(ctx context.Context) (int, error)
}

type ConfirmationService struct {
	confirmations repositories.ConfirmationRepositoryInterface
	ledger        repositories.LedgerRepositoryInterface
	messaging     MessagingServiceInterface
	notifier      ConfirmNotifierInterface
	commits       worker.CommitQueueInterface
	log           zerolog.Logger
}

func NewConfirmationService(
	confirmations repositories.ConfirmationRepositoryInterface,
	ledger repositories.LedgerRepositoryInterface,
	messaging MessagingServiceInterface,
	notifier ConfirmNotifierInterface,
	commits worker.CommitQueueInterface,
	log zerolog.Logger,
) ConfirmationServiceInterface {
	return &ConfirmationService{
		confirmations: confirmations,
		ledger:        ledger,
		messaging:     messaging,
		notifier:      notifier,
		commits:       commits,
		log:           log.With().Str("component", "confirmation").Logger(),
	}
}

func (s *ConfirmationService) OpenConfirmation(ctx context.Context, txn *db_models.Transaction, contact, shopkeeperName string) (*db_models.PendingConfirmation, error) {
	normalized := NormalizeContact(contact)
	if normalized == "" {
		return nil, fmt.Errorf("cannot open confirmation: empty contact for transaction %s", txn.ID)
	}

	if err := s.confirmations.SupersedeActive(ctx, normalized); err != nil {
		return nil, err
	}

	pc := &db_models.PendingConfirmation{
		TransactionID:  txn.ID,
		Contact:        normalized,
		AmountMinor:    txn.AmountMinor,
		ShopkeeperName: shopkeeperName,
		Status:         db_models.ConfirmationPending,
		ExpiresAt:      time.Now().Add(confirmationTTL).Unix(),
	}
	if err := s.confirmations.Create(ctx, pc); err != nil {
		return nil, err
	}

	// Messaging failure degrades to database-only flow; the confirmation can
	// still be resolved if a reply arrives or swept on expiry.
	if _, err := s.messaging.Send(ctx, normalized, s.promptBody(pc)); err != nil {
		s.log.Error().Err(err).Str("confirmation_id", pc.ID.String()).Msg("failed to send confirmation prompt")
	}

	return pc, nil
}

func (s *ConfirmationService) promptBody(pc *db_models.PendingConfirmation) string {
	return fmt.Sprintf(
		"%s has recorded a credit of Rs %.2f against your account. Reply YES to confirm or NO to reject. This request expires in 24 hours.",
		pc.ShopkeeperName, float64(pc.AmountMinor)/100)
}

// ParseReply matches an inbound body against the fixed vocabulary, case-
// insensitively. The bool reports whether the body matched at all.
func ParseReply(body string) (db_models.ConfirmationStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(body)) {
	case "YES", "Y", "CONFIRM", "OK":
		return db_models.ConfirmationConfirmed, true
	case "NO", "N", "REJECT", "CANCEL":
		return db_models.ConfirmationRejected, true
	default:
		return "", false
	}
}

func (s *ConfirmationService) HandleInboundReply(ctx context.Context, from, body, messageID string) (*ReplyOutcome, error) {
	contact := NormalizeContact(from)
	log := s.log.With().Str("contact", contact).Str("message_id", messageID).Logger()

	pc, err := s.confirmations.GetActiveByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, utils.ErrConfirmationNotFound) {
			// Stale reply or redelivery after resolution; nothing to change.
			log.Debug().Msg("inbound reply with no active confirmation")
			return &ReplyOutcome{Matched: false, Action: "ignored"}, nil
		}
		return nil, err
	}

	outcome, matched := ParseReply(body)
	if !matched {
		// Unrecognized reply while a confirmation is active: re-prompt, no
		// state change.
		if _, err := s.messaging.Send(ctx, contact,
			"Sorry, we did not understand that. Reply YES to confirm the credit or NO to reject it."); err != nil {
			log.Error().Err(err).Msg("failed to send re-prompt")
		}
		return &ReplyOutcome{Matched: false, Action: "reprompted", ConfirmationID: &pc.ID}, nil
	}

	if err := s.Resolve(ctx, pc.ID, outcome); err != nil {
		return nil, err
	}

	return &ReplyOutcome{
		Matched:        true,
		Action:         string(outcome),
		ConfirmationID: &pc.ID,
		Status:         outcome,
	}, nil
}

func (s *ConfirmationService) Resolve(ctx context.Context, confirmationID uuid.UUID, outcome db_models.ConfirmationStatus) error {
	if outcome != db_models.ConfirmationConfirmed && outcome != db_models.ConfirmationRejected {
		return fmt.Errorf("invalid resolution outcome %q", outcome)
	}

	pc, err := s.confirmations.GetByID(ctx, confirmationID)
	if err != nil {
		return err
	}

	won, err := s.confirmations.ResolveCAS(ctx, confirmationID, outcome)
	if err != nil {
		return err
	}
	if !won {
		// Already terminal (earlier reply or expiry sweep); no second
		// notification, no double transaction-status change.
		s.log.Debug().Str("confirmation_id", confirmationID.String()).Msg("resolve lost the race; confirmation already closed")
		return nil
	}

	log := s.log.With().
		Str("confirmation_id", confirmationID.String()).
		Str("transaction_id", pc.TransactionID.String()).
		Logger()

	if outcome == db_models.ConfirmationRejected {
		if err := s.ledger.UpdateStatus(ctx, pc.TransactionID, db_models.TxnStatusDisputed); err != nil {
			return err
		}
		log.Info().Msg("confirmation rejected; transaction disputed")
		return nil
	}

	if err := s.ledger.MarkConfirmedVerified(ctx, pc.TransactionID); err != nil {
		return err
	}
	log.Info().Msg("confirmation accepted; transaction verified")

	s.enqueueCommit(ctx, pc.TransactionID)

	// Detached from the request context so the bounded retry survives the
	// webhook response; failure is logged, never rolled back.
	go func(id uuid.UUID) {
		_ = s.notifier.NotifyConfirmed(context.Background(), id)
	}(pc.TransactionID)

	return nil
}

func (s *ConfirmationService) enqueueCommit(ctx context.Context, transactionID uuid.UUID) {
	txn, err := s.ledger.GetTransactionByID(ctx, transactionID)
	if err != nil {
		s.log.Error().Err(err).Str("transaction_id", transactionID.String()).Msg("cannot load transaction for chain commit")
		return
	}
	if txn.BlockchainTxID != nil {
		return
	}

	txType := chain.TxTypeCredit
	if txn.Type == db_models.TxnTypeRepay {
		txType = chain.TxTypeRepay
	}

	s.commits.Enqueue(worker.CommitJob{
		Kind:          worker.JobRecordTransaction,
		TransactionID: txn.ID,
		ContentHash:   txn.TranscriptHash,
		ShopAddress:   txn.ShopkeeperAddress,
		AmountMinor:   txn.AmountMinor,
		TxType:        txType,
	})
}

func (s *ConfirmationService) SweepExpired(ctx context.Context) (int, error) {
	swept, err := s.confirmations.SweepExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for _, pc := range swept {
		// The linked transaction stays pending indefinitely; surfacing it
		// here is the operator's cue to re-trigger verification.
		s.log.Warn().
			Str("confirmation_id", pc.ID.String()).
			Str("transaction_id", pc.TransactionID.String()).
			Msg("confirmation expired without reply; linked transaction left pending")
	}
	return len(swept), nil
}
