// Package twilio provides an SMS composer backed by a Twilio-compatible
// messaging API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twinup/pairlink/internal/transport"
)

// Message statuses reported by the Twilio API lifecycle.
const (
	messageStatusQueued    = "queued"
	messageStatusSending   = "sending"
	messageStatusSent      = "sent"
	messageStatusDelivered = "delivered"
	messageStatusFailed    = "failed"
)

// Config carries Twilio-compatible API settings. BaseURL may point to a
// self-hosted compatible endpoint.
type Config struct {
	BaseURL    string `env:"TWILIO_BASE_URL" envDefault:"https://api.twilio.com"`
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	From       string `env:"TWILIO_FROM"`
}

// Sender posts invitation text messages to a Twilio-compatible API.
type Sender struct {
	config Config
	client *http.Client
}

// NewSender builds a Sender from config.
func NewSender(config Config) *Sender {
	return &Sender{
		config: config,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Available reports whether the API credentials are configured.
func (s *Sender) Available() bool {
	if s == nil {
		return false
	}
	return strings.TrimSpace(s.config.AccountSID) != "" &&
		strings.TrimSpace(s.config.AuthToken) != "" &&
		strings.TrimSpace(s.config.From) != ""
}

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// ComposeSMS submits the message for delivery. A queued or sending status
// counts as a successful hand-off.
func (s *Sender) ComposeSMS(ctx context.Context, message transport.SMSMessage) (transport.SMSOutcome, error) {
	if err := ctx.Err(); err != nil {
		return transport.SMSOutcomeFailed, err
	}
	if !s.Available() {
		return transport.SMSOutcomeFailed, fmt.Errorf("twilio credentials are not configured")
	}
	recipient := strings.TrimSpace(message.Recipient)
	if recipient == "" {
		return transport.SMSOutcomeFailed, fmt.Errorf("recipient is required")
	}

	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", s.config.From)
	form.Set("Body", message.Body)

	endpoint := fmt.Sprintf(
		"%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.config.BaseURL, "/"),
		url.PathEscape(s.config.AccountSID),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return transport.SMSOutcomeFailed, fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.config.AccountSID, s.config.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return transport.SMSOutcomeFailed, fmt.Errorf("post message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return transport.SMSOutcomeFailed, fmt.Errorf("read message response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transport.SMSOutcomeFailed, fmt.Errorf("message api status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed messageResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return transport.SMSOutcomeFailed, fmt.Errorf("decode message response: %w", err)
	}

	switch parsed.Status {
	case messageStatusQueued, messageStatusSending, messageStatusSent, messageStatusDelivered:
		return transport.SMSOutcomeSent, nil
	case messageStatusFailed:
		reason := parsed.ErrorMessage
		if reason == "" {
			reason = "carrier rejected the message"
		}
		return transport.SMSOutcomeFailed, fmt.Errorf("message %s failed: %s", parsed.SID, reason)
	default:
		return transport.SMSOutcomeFailed, fmt.Errorf("message %s has unexpected status %q", parsed.SID, parsed.Status)
	}
}
