package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MessagingConfig holds the messaging-channel provider credentials.
type MessagingConfig struct {
	BaseURL      string // provider API base
	AccountID    string
	AuthToken    string
	FromNumber   string // sender identity shown to customers
	ProviderName string
}

type MessageReceipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// MessagingServiceInterface is the outbound half of the messaging
// collaborator contract; inbound replies arrive on the webhook controller.
type MessagingServiceInterface interface {
	Send(ctx context.Context, to, body string) (*MessageReceipt, error)
}

type httpMessagingService struct {
	cfg    MessagingConfig
	client *http.Client
	log    zerolog.Logger
}

func NewMessagingService(cfg MessagingConfig, log zerolog.Logger) MessagingServiceInterface {
	l := log.With().Str("component", "messaging").Logger()

	if cfg.BaseURL == "" || cfg.AuthToken == "" {
		// Degrade rather than abort: transactions must still get a database
		// record when the channel is unconfigured.
		l.Warn().Msg("messaging provider not configured; outbound messages will be logged only")
		return &loggingMessagingService{log: l}
	}

	return &httpMessagingService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: l,
	}
}

func (s *httpMessagingService) Send(ctx context.Context, to, body string) (*MessageReceipt, error) {
	payload, err := json.Marshal(map[string]string{
		"from": s.cfg.FromNumber,
		"to":   to,
		"body": body,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.cfg.AccountID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("messaging send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("messaging send: provider returned %d", resp.StatusCode)
	}

	var receipt MessageReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("messaging send: decode receipt: %w", err)
	}

	s.log.Info().Str("to", to).Str("message_id", receipt.ID).Msg("outbound message sent")
	return &receipt, nil
}

// loggingMessagingService stands in when no provider is configured.
type loggingMessagingService struct {
	log zerolog.Logger
}

func (s *loggingMessagingService) Send(ctx context.Context, to, body string) (*MessageReceipt, error) {
	s.log.Info().Str("to", to).Str("body", body).Msg("messaging disabled; message not delivered")
	return &MessageReceipt{ID: "disabled", Status: "skipped"}, nil
}

// NormalizeContact canonicalizes a phone identity for reply matching:
// digits with country code, no spaces or separators.
func NormalizeContact(contact string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(contact) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	// Default to the Indian country code for bare 10-digit numbers.
	if len(digits) == 10 {
		digits = "91" + digits
	}
	return digits
}
