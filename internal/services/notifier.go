package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotifierConfig drives the downstream confirm callback:
// POST {base}/transactions/{id}/confirm after a customer confirms.
type NotifierConfig struct {
	BaseURL     string
	MaxAttempts int           // default 3
	BaseDelay   time.Duration // default 1s; doubles per attempt (1s, 2s, 4s)
}

type ConfirmNotifierInterface interface {
	// NotifyConfirmed posts the confirmation downstream with bounded retry.
	// Exhausting all attempts logs failure and returns the last error; the
	// already-applied confirmed state is never rolled back.
	NotifyConfirmed(ctx context.Context, transactionID uuid.UUID) error
}

type ConfirmNotifier struct {
	cfg    NotifierConfig
	client *http.Client
	log    zerolog.Logger
}

func NewConfirmNotifier(cfg NotifierConfig, log zerolog.Logger) ConfirmNotifierInterface {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &ConfirmNotifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "confirm_notifier").Logger(),
	}
}

func (n *ConfirmNotifier) NotifyConfirmed(ctx context.Context, transactionID uuid.UUID) error {
	if n.cfg.BaseURL == "" {
		n.log.Debug().Msg("no downstream confirm URL configured")
		return nil
	}

	var lastErr error
	delay := n.cfg.BaseDelay

	for attempt := 1; attempt <= n.cfg.MaxAttempts; attempt++ {
		lastErr = n.post(ctx, transactionID)
		if lastErr == nil {
			return nil
		}

		n.log.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Str("transaction_id", transactionID.String()).
			Msg("downstream confirm attempt failed")

		if attempt == n.cfg.MaxAttempts {
			break
		}

		// Timer-based wait, cancellable; holds no lock and mutates no shared
		// state while waiting.
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	n.log.Error().
		Err(lastErr).
		Str("transaction_id", transactionID.String()).
		Msg("downstream confirm failed after all attempts; confirmed state kept")
	return lastErr
}

func (n *ConfirmNotifier) post(ctx context.Context, transactionID uuid.UUID) error {
	payload, err := json.Marshal(map[string]string{"transaction_id": transactionID.String()})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/transactions/%s/confirm", strings.TrimRight(n.cfg.BaseURL, "/"), transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("downstream returned %d", resp.StatusCode)
	}
	return nil
}
