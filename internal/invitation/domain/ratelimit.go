package domain

import (
	"context"
	"time"

	apperrors "github.com/twinup/pairlink/internal/platform/errors"
)

const (
	// RateLimitWindow is the rolling interval over which creation volume is bounded.
	RateLimitWindow = time.Hour
	// RateLimitMax is the creation ceiling within one window.
	RateLimitMax = 5
)

// ErrRateLimited indicates the creation ceiling was reached inside the window.
var ErrRateLimited = apperrors.New(apperrors.CodeInvitationRateLimited, "invitation rate limit exceeded")

// RateLimiter bounds invitation creation per rolling time window. It reads
// the window count from the store on every check; the owning service
// serializes checks against concurrent creations.
type RateLimiter struct {
	store  Store
	clock  func() time.Time
	window time.Duration
	limit  int
}

// NewRateLimiter builds a limiter over store with the standard window.
func NewRateLimiter(store Store, clock func() time.Time) *RateLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		store:  store,
		clock:  clock,
		window: RateLimitWindow,
		limit:  RateLimitMax,
	}
}

// CanCreate reports whether another invitation may be created now. A store
// read error fails closed: creation is denied rather than risking unbounded
// sends during a storage outage.
func (l *RateLimiter) CanCreate(ctx context.Context) (bool, error) {
	cutoff := l.clock().UTC().Add(-l.window)
	count, err := l.store.CountCreatedSince(ctx, cutoff)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorageFailure, "count recent invitations", err)
	}
	return count < l.limit, nil
}
