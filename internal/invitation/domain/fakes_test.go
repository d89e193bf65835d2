package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/twinup/pairlink/internal/invitation/storage"
	"github.com/twinup/pairlink/internal/notify"
	"github.com/twinup/pairlink/internal/transport"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", fmt.Errorf("id sequence exhausted")
		}
		generated := ids[index]
		index++
		return generated, nil
	}
}

// testToken renders a deterministic 64-hex token for fixtures.
func testToken(n int) string {
	return fmt.Sprintf("%064X", n)
}

func sequentialTokens(tokens ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(tokens) {
			return "", fmt.Errorf("token sequence exhausted")
		}
		generated := tokens[index]
		index++
		return generated, nil
	}
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]Invitation
	order   []string

	putErr   error
	readErr  error
	countErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]Invitation{}}
}

func (f *fakeStore) Put(_ context.Context, invitation Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if _, exists := f.records[invitation.ID]; !exists {
		f.order = append(f.order, invitation.ID)
	}
	f.records[invitation.ID] = invitation
	return nil
}

func (f *fakeStore) Get(_ context.Context, invitationID string) (Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return Invitation{}, f.readErr
	}
	record, ok := f.records[invitationID]
	if !ok {
		return Invitation{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) FindByToken(_ context.Context, token string) (Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return Invitation{}, f.readErr
	}
	for _, record := range f.records {
		if record.Token == token {
			return record, nil
		}
	}
	return Invitation{}, storage.ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	records := make([]Invitation, 0, len(f.order))
	for _, invitationID := range f.order {
		records = append(records, f.records[invitationID])
	}
	return records, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, invitationID string, status Status, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[invitationID]
	if !ok {
		return nil
	}
	record.Status = status
	record.LastAttemptAt = at
	f.records[invitationID] = record
	return nil
}

func (f *fakeStore) IncrementAttempt(_ context.Context, invitationID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[invitationID]
	if !ok {
		return nil
	}
	record.AttemptCount++
	record.LastAttemptAt = at
	f.records[invitationID] = record
	return nil
}

func (f *fakeStore) CountCreatedSince(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, record := range f.records {
		if !record.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Prune(_ context.Context, now time.Time) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	expired := 0
	removed := 0
	kept := f.order[:0]
	for _, invitationID := range f.order {
		record := f.records[invitationID]
		if record.Status == StatusPending && now.After(record.ExpiresAt) {
			record.Status = StatusExpired
			record.LastAttemptAt = now
			f.records[invitationID] = record
			expired++
		}
		if now.Sub(record.CreatedAt) > RetentionWindow {
			delete(f.records, invitationID)
			removed++
			continue
		}
		kept = append(kept, invitationID)
	}
	f.order = kept
	return expired, removed, nil
}

type fakeEmail struct {
	unavailable bool
	outcome     transport.EmailOutcome
	err         error
	calls       int
	last        transport.EmailMessage
}

func (f *fakeEmail) Available() bool { return !f.unavailable }

func (f *fakeEmail) ComposeEmail(_ context.Context, message transport.EmailMessage) (transport.EmailOutcome, error) {
	f.calls++
	f.last = message
	if f.err != nil {
		return "", f.err
	}
	if f.outcome == "" {
		return transport.EmailOutcomeSent, nil
	}
	return f.outcome, nil
}

type fakeSMS struct {
	unavailable bool
	outcome     transport.SMSOutcome
	err         error
	calls       int
	last        transport.SMSMessage
}

func (f *fakeSMS) Available() bool { return !f.unavailable }

func (f *fakeSMS) ComposeSMS(_ context.Context, message transport.SMSMessage) (transport.SMSOutcome, error) {
	f.calls++
	f.last = message
	if f.err != nil {
		return "", f.err
	}
	if f.outcome == "" {
		return transport.SMSOutcomeSent, nil
	}
	return f.outcome, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics := make([]string, 0, len(r.events))
	for _, event := range r.events {
		topics = append(topics, event.Topic)
	}
	return topics
}
