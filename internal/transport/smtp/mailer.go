// Package smtp provides a plain SMTP email composer for hosts without a
// native mail client.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/twinup/pairlink/internal/transport"
)

// Config carries SMTP relay settings.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// Mailer sends invitation emails through an SMTP relay. Unlike an
// interactive mail client there is no draft or cancel path, so compose
// outcomes are either sent or an error.
type Mailer struct {
	config Config
	send   func(addr string, auth smtp.Auth, from string, to []string, payload []byte) error
}

// NewMailer builds a Mailer from config.
func NewMailer(config Config) *Mailer {
	return &Mailer{config: config, send: smtp.SendMail}
}

// Available reports whether the relay is configured.
func (m *Mailer) Available() bool {
	if m == nil {
		return false
	}
	return strings.TrimSpace(m.config.Host) != "" && strings.TrimSpace(m.config.From) != ""
}

// ComposeEmail delivers the message through the relay.
func (m *Mailer) ComposeEmail(ctx context.Context, message transport.EmailMessage) (transport.EmailOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !m.Available() {
		return "", fmt.Errorf("smtp relay is not configured")
	}
	recipient := strings.TrimSpace(message.Recipient)
	if recipient == "" {
		return "", fmt.Errorf("recipient is required")
	}

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	payload := buildPayload(m.config.From, recipient, message.Subject, message.Body)
	if err := m.send(addr, auth, m.config.From, []string{recipient}, payload); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}
	return transport.EmailOutcomeSent, nil
}

func buildPayload(from, to, subject, body string) []byte {
	var builder strings.Builder
	fmt.Fprintf(&builder, "From: %s\r\n", from)
	fmt.Fprintf(&builder, "To: %s\r\n", to)
	fmt.Fprintf(&builder, "Subject: %s\r\n", subject)
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(body)
	builder.WriteString("\r\n")
	return []byte(builder.String())
}
