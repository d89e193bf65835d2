// Package transport defines the channel transport boundary used to hand
// invitations to the host's email and text-message facilities. The engine
// only observes compose outcomes; it never implements mail or carrier
// protocols itself.
package transport

import "context"

// EmailOutcome identifies the result of handing a message to the email channel.
type EmailOutcome string

const (
	// EmailOutcomeSent means the user-facing send action completed.
	EmailOutcomeSent EmailOutcome = "sent"
	// EmailOutcomeSaved means the message was drafted but not sent.
	EmailOutcomeSaved EmailOutcome = "saved"
	// EmailOutcomeCancelled means the user abandoned the compose flow.
	EmailOutcomeCancelled EmailOutcome = "cancelled"
)

// SMSOutcome identifies the result of handing a message to the SMS channel.
type SMSOutcome string

const (
	// SMSOutcomeSent means the message was handed off to the carrier.
	SMSOutcomeSent SMSOutcome = "sent"
	// SMSOutcomeFailed means the carrier hand-off did not complete.
	SMSOutcomeFailed SMSOutcome = "failed"
)

// EmailMessage carries one composed invitation email.
type EmailMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// SMSMessage carries one composed invitation text message.
type SMSMessage struct {
	Recipient string
	Body      string
}

// EmailComposer is the email channel capability.
//
// Available must be probed before ComposeEmail; an unavailable channel is a
// user-facing condition, not a transport failure.
type EmailComposer interface {
	Available() bool
	ComposeEmail(ctx context.Context, message EmailMessage) (EmailOutcome, error)
}

// SMSComposer is the text-message channel capability.
type SMSComposer interface {
	Available() bool
	ComposeSMS(ctx context.Context, message SMSMessage) (SMSOutcome, error)
}
