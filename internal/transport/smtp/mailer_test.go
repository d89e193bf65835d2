package smtp

import (
	"context"
	"errors"
	stdsmtp "net/smtp"
	"strings"
	"testing"

	"github.com/twinup/pairlink/internal/transport"
)

func TestAvailableRequiresHostAndFrom(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		config Config
		want   bool
	}{
		{"configured", Config{Host: "mail.example.com", From: "noreply@example.com"}, true},
		{"missing host", Config{From: "noreply@example.com"}, false},
		{"missing from", Config{Host: "mail.example.com"}, false},
		{"empty", Config{}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NewMailer(tc.config).Available(); got != tc.want {
				t.Fatalf("Available() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComposeEmailSends(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(Config{
		Host: "mail.example.com",
		Port: 2525,
		From: "noreply@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotPayload []byte
	mailer.send = func(addr string, _ stdsmtp.Auth, from string, to []string, payload []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotPayload = payload
		return nil
	}

	outcome, err := mailer.ComposeEmail(context.Background(), transport.EmailMessage{
		Recipient: " friend@example.com ",
		Subject:   "Ada invited you",
		Body:      "open the link",
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if outcome != transport.EmailOutcomeSent {
		t.Fatalf("outcome = %s, want sent", outcome)
	}
	if gotAddr != "mail.example.com:2525" {
		t.Fatalf("addr = %s", gotAddr)
	}
	if gotFrom != "noreply@example.com" {
		t.Fatalf("from = %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "friend@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	payload := string(gotPayload)
	if !strings.Contains(payload, "Subject: Ada invited you\r\n") {
		t.Fatalf("payload missing subject: %q", payload)
	}
	if !strings.Contains(payload, "open the link") {
		t.Fatalf("payload missing body: %q", payload)
	}
}

func TestComposeEmailErrors(t *testing.T) {
	t.Parallel()

	t.Run("unconfigured", func(t *testing.T) {
		t.Parallel()
		mailer := NewMailer(Config{})
		if _, err := mailer.ComposeEmail(context.Background(), transport.EmailMessage{Recipient: "a@b.com"}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing recipient", func(t *testing.T) {
		t.Parallel()
		mailer := NewMailer(Config{Host: "mail.example.com", From: "noreply@example.com"})
		if _, err := mailer.ComposeEmail(context.Background(), transport.EmailMessage{}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("relay failure", func(t *testing.T) {
		t.Parallel()
		mailer := NewMailer(Config{Host: "mail.example.com", From: "noreply@example.com"})
		mailer.send = func(string, stdsmtp.Auth, string, []string, []byte) error {
			return errors.New("relay down")
		}
		if _, err := mailer.ComposeEmail(context.Background(), transport.EmailMessage{Recipient: "a@b.com"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
