package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/twinup/pairlink/internal/invitation/storage"
	"github.com/twinup/pairlink/internal/notify"
	apperrors "github.com/twinup/pairlink/internal/platform/errors"
	"github.com/twinup/pairlink/internal/platform/id"
	"github.com/twinup/pairlink/internal/transport"
)

var (
	// ErrNotFound indicates no invitation matches the given token or id.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "invitation not found")
	// ErrAlreadyAccepted indicates a second accept of a redeemed invitation.
	ErrAlreadyAccepted = apperrors.New(apperrors.CodeInvitationAlreadyAccepted, "invitation already accepted")
	// ErrDeclined indicates the invitation was rejected by the recipient.
	ErrDeclined = apperrors.New(apperrors.CodeInvitationDeclined, "invitation declined")
	// ErrExpired indicates the invitation passed its deadline unredeemed.
	ErrExpired = apperrors.New(apperrors.CodeInvitationExpired, "invitation expired")
	// ErrMaxAttempts indicates the delivery retry ceiling was reached.
	ErrMaxAttempts = apperrors.New(apperrors.CodeInvitationMaxAttempts, "invitation delivery attempts exhausted")
	// ErrInvalidChannel indicates an unrecognized delivery channel or method.
	ErrInvalidChannel = apperrors.New(apperrors.CodeInvitationInvalidChannel, "invalid delivery channel")
)

// Notification topics published on status-changing events.
const (
	TopicSent     = "invitation.sent"
	TopicAccepted = "invitation.accepted"
	TopicDeclined = "invitation.declined"
	TopicExpired  = "invitation.expired"
)

// Store is the domain persistence boundary for invitation lifecycle behavior.
// Implementations return storage.ErrNotFound for missing records; UpdateStatus
// is a no-op when the id is absent.
type Store interface {
	Put(ctx context.Context, invitation Invitation) error
	Get(ctx context.Context, invitationID string) (Invitation, error)
	FindByToken(ctx context.Context, token string) (Invitation, error)
	List(ctx context.Context) ([]Invitation, error)
	UpdateStatus(ctx context.Context, invitationID string, status Status, at time.Time) error
	IncrementAttempt(ctx context.Context, invitationID string, at time.Time) error
	CountCreatedSince(ctx context.Context, cutoff time.Time) (int, error)
	Prune(ctx context.Context, now time.Time) (expired int, removed int, err error)
}

// Config adjusts service construction. Zero values select production defaults.
type Config struct {
	LinkScheme string
	Clock      func() time.Time
	NewID      func() (string, error)
	NewToken   func() (string, error)
}

// Service orchestrates the invitation lifecycle. All mutating operations are
// serialized by an internal mutex, which makes the rate-limiter check atomic
// with record creation and gives single-writer semantics per engine instance.
type Service struct {
	mu         sync.Mutex
	store      Store
	email      transport.EmailComposer
	sms        transport.SMSComposer
	notifier   notify.Notifier
	limiter    *RateLimiter
	linkScheme string
	clock      func() time.Time
	newID      func() (string, error)
	newToken   func() (string, error)
}

// NewService constructs the invitation lifecycle service. Either composer may
// be nil, in which case its channel reports as unavailable.
func NewService(store Store, email transport.EmailComposer, sms transport.SMSComposer, notifier notify.Notifier, cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	newToken := cfg.NewToken
	if newToken == nil {
		newToken = NewToken
	}
	linkScheme := strings.TrimSpace(cfg.LinkScheme)
	if linkScheme == "" {
		linkScheme = DefaultLinkScheme
	}
	return &Service{
		store:      store,
		email:      email,
		sms:        sms,
		notifier:   notifier,
		limiter:    NewRateLimiter(store, clock),
		linkScheme: linkScheme,
		clock:      clock,
		newID:      newID,
		newToken:   newToken,
	}
}

// CreateAndSend creates a new invitation and dispatches it over the channels
// selected by method. The rate limiter is consulted before token generation;
// channel failures increment the attempt count and are surfaced while the
// created record remains persisted.
func (s *Service) CreateAndSend(ctx context.Context, input CreateInput, method Method) (Invitation, SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if method != MethodEmail && method != MethodSMS && method != MethodBoth {
		return Invitation{}, SendResult{}, ErrInvalidChannel
	}

	allowed, err := s.limiter.CanCreate(ctx)
	if err != nil {
		return Invitation{}, SendResult{}, err
	}
	if !allowed {
		return Invitation{}, SendResult{}, ErrRateLimited
	}

	invitation, err := NewInvitation(input, s.linkScheme, s.clock, s.newID, s.newToken)
	if err != nil {
		return Invitation{}, SendResult{}, err
	}
	if (method == MethodEmail && invitation.RecipientEmail == "") ||
		(method == MethodSMS && invitation.RecipientPhone == "") {
		return Invitation{}, SendResult{}, ErrContactMissing
	}

	if err := s.store.Put(ctx, invitation); err != nil {
		return Invitation{}, SendResult{}, apperrors.Wrap(apperrors.CodeStorageFailure, "persist invitation", err)
	}

	return s.dispatch(ctx, invitation, method)
}

// Send re-dispatches an existing invitation over the channels selected by
// method without touching the rate limiter.
func (s *Service) Send(ctx context.Context, invitationID string, method Method) (Invitation, SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, err := s.getLocked(ctx, invitationID)
	if err != nil {
		return Invitation{}, SendResult{}, err
	}
	return s.dispatch(ctx, invitation, method)
}

// Retry re-sends one invitation over the named channel only. Preconditions
// are reported with specific errors so the UI can render precise remediation:
// the record must exist, the attempt ceiling must not be reached, and the
// invitation must be unexpired.
func (s *Service) Retry(ctx context.Context, invitationID string, channel Channel) (Invitation, SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, err := s.getLocked(ctx, invitationID)
	if err != nil {
		return Invitation{}, SendResult{}, err
	}
	if invitation.AttemptCount >= MaxSendAttempts {
		return Invitation{}, SendResult{}, ErrMaxAttempts
	}
	if invitation.ExpiredAt(s.clock().UTC()) || invitation.Status == StatusExpired {
		return Invitation{}, SendResult{}, ErrExpired
	}

	switch channel {
	case ChannelEmail:
		return s.dispatch(ctx, invitation, MethodEmail)
	case ChannelSMS:
		return s.dispatch(ctx, invitation, MethodSMS)
	default:
		return Invitation{}, SendResult{}, ErrInvalidChannel
	}
}

// Accept redeems the invitation identified by token. Acceptance is
// idempotent for the success case only: a second accept reports
// ErrAlreadyAccepted rather than a silent repeated success. An invitation
// found past its deadline is durably transitioned to expired before the
// expiry error is raised.
func (s *Service) Accept(ctx context.Context, rawToken string) (Invitation, error) {
	token, err := NormalizeToken(rawToken)
	if err != nil {
		return Invitation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, err := s.findByTokenLocked(ctx, token)
	if err != nil {
		return Invitation{}, err
	}

	switch invitation.Status {
	case StatusAccepted:
		return Invitation{}, ErrAlreadyAccepted
	case StatusDeclined:
		return Invitation{}, ErrDeclined
	case StatusExpired:
		return Invitation{}, ErrExpired
	}

	now := s.clock().UTC()
	if invitation.ExpiredAt(now) {
		if err := s.transitionLocked(ctx, &invitation, StatusExpired, now); err != nil {
			return Invitation{}, err
		}
		s.publish(ctx, TopicExpired, invitation)
		return Invitation{}, ErrExpired
	}

	if err := s.transitionLocked(ctx, &invitation, StatusAccepted, now); err != nil {
		return Invitation{}, err
	}
	s.publish(ctx, TopicAccepted, invitation)
	return invitation, nil
}

// Decline rejects the invitation identified by token. Any non-terminal
// record transitions to declined; declining an already-declined invitation
// is a no-op success so callers may treat the operation as idempotent.
func (s *Service) Decline(ctx context.Context, rawToken string) (Invitation, error) {
	token, err := NormalizeToken(rawToken)
	if err != nil {
		return Invitation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, err := s.findByTokenLocked(ctx, token)
	if err != nil {
		return Invitation{}, err
	}

	switch invitation.Status {
	case StatusDeclined:
		return invitation, nil
	case StatusAccepted:
		return Invitation{}, ErrAlreadyAccepted
	case StatusExpired:
		return Invitation{}, ErrExpired
	}

	now := s.clock().UTC()
	if err := s.transitionLocked(ctx, &invitation, StatusDeclined, now); err != nil {
		return Invitation{}, err
	}
	s.publish(ctx, TopicDeclined, invitation)
	return invitation, nil
}

// Find resolves a token to its invitation without mutating lifecycle state.
func (s *Service) Find(ctx context.Context, rawToken string) (Invitation, error) {
	token, err := NormalizeToken(rawToken)
	if err != nil {
		return Invitation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByTokenLocked(ctx, token)
}

// List returns every stored invitation.
func (s *Service) List(ctx context.Context) ([]Invitation, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "list invitations", err)
	}
	return records, nil
}

func (s *Service) getLocked(ctx context.Context, invitationID string) (Invitation, error) {
	invitation, err := s.store.Get(ctx, invitationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Invitation{}, ErrNotFound
		}
		return Invitation{}, apperrors.Wrap(apperrors.CodeStorageFailure, "load invitation", err)
	}
	return invitation, nil
}

func (s *Service) findByTokenLocked(ctx context.Context, token string) (Invitation, error) {
	invitation, err := s.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Invitation{}, ErrNotFound
		}
		return Invitation{}, apperrors.Wrap(apperrors.CodeStorageFailure, "find invitation by token", err)
	}
	return invitation, nil
}

// transitionLocked validates the state machine edge, persists the new status,
// and mirrors the change onto the in-memory record.
func (s *Service) transitionLocked(ctx context.Context, invitation *Invitation, next Status, at time.Time) error {
	if !invitation.Status.CanTransition(next) {
		return apperrors.WithMetadata(apperrors.CodeInvitationInvalidStatus,
			fmt.Sprintf("cannot transition invitation from %s to %s", invitation.Status, next),
			map[string]string{"from": string(invitation.Status), "to": string(next)})
	}
	if err := s.store.UpdateStatus(ctx, invitation.ID, next, at); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "update invitation status", err)
	}
	invitation.Status = next
	invitation.LastAttemptAt = at
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, invitation Invitation) {
	notify.Publish(ctx, s.notifier, notify.Event{
		Topic:        topic,
		InvitationID: invitation.ID,
		Status:       string(invitation.Status),
		DedupeKey:    topic + ":" + invitation.ID + ":v1",
		OccurredAt:   s.clock().UTC(),
	})
}
