// Package deeplink routes app URLs to typed navigation intents.
package deeplink

import (
	"net/url"
	"strings"
	"sync"

	"github.com/twinup/pairlink/internal/invitation/domain"
)

// IntentKind identifies the navigation target of a deep link.
type IntentKind string

const (
	IntentInvitation IntentKind = "invitation"
	IntentProfile    IntentKind = "profile"
	IntentChat       IntentKind = "chat"
	IntentAssessment IntentKind = "assessment"
	IntentUnknown    IntentKind = "unknown"
)

// Intent is the routing decision for one URL. Token is set only for
// invitation intents; ID only for profile intents.
type Intent struct {
	Kind  IntentKind
	Token string
	ID    string
}

// PendingToken holds an invitation token captured from a deep link until
// the app is ready to redeem it.
type PendingToken struct {
	Token     string
	Processed bool
}

// Router turns raw URLs into intents and keeps the single pending
// invitation token slot. Safe for concurrent use.
type Router struct {
	mu      sync.Mutex
	pending *PendingToken
}

// NewRouter builds an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Route parses rawURL into an intent. Routing never fails; anything
// unrecognized, including an invitation link with a malformed token, maps
// to IntentUnknown. A valid invitation link also stores its token in the
// pending slot, replacing any earlier unprocessed token.
func (r *Router) Route(rawURL string) Intent {
	intent := parse(rawURL)
	if intent.Kind == IntentInvitation && r != nil {
		r.mu.Lock()
		r.pending = &PendingToken{Token: intent.Token}
		r.mu.Unlock()
	}
	return intent
}

// Pending returns a copy of the pending token slot, or false when the slot
// is empty.
func (r *Router) Pending() (PendingToken, bool) {
	if r == nil {
		return PendingToken{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return PendingToken{}, false
	}
	return *r.pending, true
}

// ConsumePendingToken marks the slot processed and returns its token.
// Returns false when the slot is empty or already processed.
func (r *Router) ConsumePendingToken() (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil || r.pending.Processed {
		return "", false
	}
	r.pending.Processed = true
	return r.pending.Token, true
}

// Clear empties the pending token slot.
func (r *Router) Clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}

func parse(rawURL string) Intent {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Intent{Kind: IntentUnknown}
	}

	// Custom schemes put the first segment in the host; universal links put
	// it in the path. Accept both.
	segments := make([]string, 0, 4)
	if parsed.Host != "" {
		segments = append(segments, parsed.Host)
	}
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return Intent{Kind: IntentUnknown}
	}

	head := strings.ToLower(segments[0])
	rest := segments[1:]

	switch head {
	case "invitation":
		if len(rest) != 1 {
			return Intent{Kind: IntentUnknown}
		}
		token, err := domain.NormalizeToken(rest[0])
		if err != nil {
			return Intent{Kind: IntentUnknown}
		}
		return Intent{Kind: IntentInvitation, Token: token}
	case "profile":
		if len(rest) != 1 {
			return Intent{Kind: IntentUnknown}
		}
		return Intent{Kind: IntentProfile, ID: rest[0]}
	case "chat":
		if len(rest) != 0 {
			return Intent{Kind: IntentUnknown}
		}
		return Intent{Kind: IntentChat}
	case "assessment":
		if len(rest) != 0 {
			return Intent{Kind: IntentUnknown}
		}
		return Intent{Kind: IntentAssessment}
	default:
		return Intent{Kind: IntentUnknown}
	}
}
