// Package domain implements the invitation lifecycle: secure token
// generation, creation rate limiting, multi-channel send orchestration,
// the status state machine, retry policy, and lifecycle analytics.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/twinup/pairlink/internal/platform/errors"
	"github.com/twinup/pairlink/internal/platform/id"
)

const (
	// TTL is the fixed lifetime of an invitation from creation.
	TTL = 168 * time.Hour
	// MaxSendAttempts caps delivery retries per invitation.
	MaxSendAttempts = 3
	// RetentionWindow bounds how long non-pending records survive pruning.
	RetentionWindow = 30 * 24 * time.Hour
)

var (
	// ErrContactMissing indicates neither recipient email nor phone was provided.
	ErrContactMissing = apperrors.New(apperrors.CodeInvitationContactMissing, "recipient email or phone is required")
	// ErrInviterMissing indicates a missing inviter display name.
	ErrInviterMissing = apperrors.New(apperrors.CodeInvitationInviterMissing, "inviter name is required")
)

// Status represents the lifecycle status of an invitation.
type Status string

const (
	// StatusPending indicates an invitation created but not yet delivered.
	StatusPending Status = "pending"
	// StatusSent indicates at least one channel hand-off completed.
	StatusSent Status = "sent"
	// StatusDelivered indicates the channel confirmed delivery.
	StatusDelivered Status = "delivered"
	// StatusAccepted indicates the recipient redeemed the invitation.
	StatusAccepted Status = "accepted"
	// StatusDeclined indicates the recipient rejected the invitation.
	StatusDeclined Status = "declined"
	// StatusExpired indicates the invitation passed its deadline unredeemed.
	StatusExpired Status = "expired"
)

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusDeclined, StatusExpired:
		return true
	default:
		return false
	}
}

// forwardRank orders the delivery progression; terminal statuses are handled
// separately because declined and expired may interrupt any non-terminal state.
var forwardRank = map[Status]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusAccepted:  3,
}

// CanTransition reports whether moving from s to next respects the
// monotonic lifecycle. Transitions never move a record backward and never
// leave a terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusDeclined || next == StatusExpired {
		return true
	}
	from, okFrom := forwardRank[s]
	to, okTo := forwardRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to > from
}

// Channel identifies one delivery channel.
type Channel string

const (
	// ChannelEmail delivers by electronic mail.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers by text message.
	ChannelSMS Channel = "sms"
)

// Method selects which channels a send should use.
type Method string

const (
	// MethodEmail sends over email only.
	MethodEmail Method = "email"
	// MethodSMS sends over text message only.
	MethodSMS Method = "sms"
	// MethodBoth sends over both channels; success is the OR of outcomes.
	MethodBoth Method = "both"
)

// Invitation is an offer to establish a one-to-one pairing, keyed by a
// secret token. The inviter's own contact details are deliberately never
// persisted; InviterName is display-only.
type Invitation struct {
	ID             string            `json:"id"`
	Token          string            `json:"token"`
	InviterName    string            `json:"inviterName"`
	RecipientEmail string            `json:"recipientEmail,omitempty"`
	RecipientPhone string            `json:"recipientPhone,omitempty"`
	Status         Status            `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	ExpiresAt      time.Time         `json:"expiresAt"`
	AttemptCount   int               `json:"attemptCount"`
	LastAttemptAt  time.Time         `json:"lastAttemptAt"`
	TwinType       string            `json:"twinType,omitempty"`
	AccentColor    string            `json:"accentColor,omitempty"`
	DeepLink       string            `json:"deepLink"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// ExpiredAt reports whether the invitation deadline has passed at now.
func (inv Invitation) ExpiredAt(now time.Time) bool {
	return now.After(inv.ExpiresAt)
}

// CreateInput describes the caller-provided fields of a new invitation.
type CreateInput struct {
	InviterName    string
	RecipientEmail string
	RecipientPhone string
	TwinType       string
	AccentColor    string
	Metadata       map[string]string
}

// NewInvitation builds a pending invitation with a generated ID, a fresh
// secret token, and a fixed expiry of CreatedAt+TTL. The deep link is
// derived once from the token and cached on the record.
func NewInvitation(input CreateInput, linkScheme string, now func() time.Time, idGenerator func() (string, error), tokenGenerator func() (string, error)) (Invitation, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if tokenGenerator == nil {
		tokenGenerator = NewToken
	}
	if strings.TrimSpace(linkScheme) == "" {
		linkScheme = DefaultLinkScheme
	}

	inviterName := strings.TrimSpace(input.InviterName)
	if inviterName == "" {
		return Invitation{}, ErrInviterMissing
	}
	recipientEmail := strings.TrimSpace(input.RecipientEmail)
	recipientPhone := strings.TrimSpace(input.RecipientPhone)
	if recipientEmail == "" && recipientPhone == "" {
		return Invitation{}, ErrContactMissing
	}

	invitationID, err := idGenerator()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}
	token, err := tokenGenerator()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation token: %w", err)
	}

	createdAt := now().UTC()
	return Invitation{
		ID:             invitationID,
		Token:          token,
		InviterName:    inviterName,
		RecipientEmail: recipientEmail,
		RecipientPhone: recipientPhone,
		Status:         StatusPending,
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.Add(TTL),
		LastAttemptAt:  createdAt,
		TwinType:       strings.TrimSpace(input.TwinType),
		AccentColor:    strings.TrimSpace(input.AccentColor),
		DeepLink:       DeepLink(linkScheme, token),
		Metadata:       input.Metadata,
	}, nil
}

// DefaultLinkScheme is the URL scheme used for derived deep links.
const DefaultLinkScheme = "twinup"

// DeepLink renders the redemption URL for a token.
func DeepLink(scheme string, token string) string {
	return fmt.Sprintf("%s://invitation/%s", scheme, token)
}
