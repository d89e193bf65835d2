// Package notify provides the fire-and-forget local notification capability.
package notify

import (
	"context"
	"log"
	"time"
)

// Event describes one status-changing invitation event worth surfacing to
// the user. DedupeKey lets downstream sinks collapse repeated publishes of
// the same lifecycle transition.
type Event struct {
	Topic        string
	InvitationID string
	Status       string
	DedupeKey    string
	OccurredAt   time.Time
}

// Notifier surfaces a local notification for an event. Implementations may
// fail; callers log and move on, never propagate.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// LogNotifier writes events to the process log. It is the default sink when
// no host notification facility is wired.
type LogNotifier struct{}

// Publish logs the event.
func (LogNotifier) Publish(_ context.Context, event Event) error {
	log.Printf("notification %s invitation=%s status=%s", event.Topic, event.InvitationID, event.Status)
	return nil
}

// Publish sends event through notifier, logging failures instead of
// returning them. A nil notifier is a no-op.
func Publish(ctx context.Context, notifier Notifier, event Event) {
	if notifier == nil {
		return
	}
	if err := notifier.Publish(ctx, event); err != nil {
		log.Printf("publish notification %s: %v", event.Topic, err)
	}
}
