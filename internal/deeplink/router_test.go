package deeplink

import (
	"fmt"
	"strings"
	"testing"
)

func validToken(n int) string {
	return fmt.Sprintf("%064X", n)
}

func TestRoutePatterns(t *testing.T) {
	t.Parallel()

	token := validToken(7)
	cases := []struct {
		name string
		url  string
		want Intent
	}{
		{"invitation custom scheme", "twinup://invitation/" + token, Intent{Kind: IntentInvitation, Token: token}},
		{"invitation path form", "https://pairlink.example.com/invitation/" + token, Intent{Kind: IntentInvitation, Token: token}},
		{"invitation lowercase token normalizes", "twinup://invitation/" + strings.ToLower(token), Intent{Kind: IntentInvitation, Token: token}},
		{"profile", "twinup://profile/user-42", Intent{Kind: IntentProfile, ID: "user-42"}},
		{"chat", "twinup://chat", Intent{Kind: IntentChat}},
		{"assessment", "twinup://assessment", Intent{Kind: IntentAssessment}},
		{"invitation malformed token", "twinup://invitation/not-a-valid-token", Intent{Kind: IntentUnknown}},
		{"invitation short token", "twinup://invitation/ABC123", Intent{Kind: IntentUnknown}},
		{"invitation missing token", "twinup://invitation", Intent{Kind: IntentUnknown}},
		{"invitation extra segment", "twinup://invitation/" + token + "/extra", Intent{Kind: IntentUnknown}},
		{"profile missing id", "twinup://profile", Intent{Kind: IntentUnknown}},
		{"chat with trailing id", "twinup://chat/123", Intent{Kind: IntentUnknown}},
		{"unrecognized head", "twinup://settings/general", Intent{Kind: IntentUnknown}},
		{"empty url", "", Intent{Kind: IntentUnknown}},
		{"garbage", "::::not a url", Intent{Kind: IntentUnknown}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := NewRouter()
			got := router.Route(tc.url)
			if got != tc.want {
				t.Fatalf("Route(%q) = %+v, want %+v", tc.url, got, tc.want)
			}
		})
	}
}

func TestRouteStoresPendingToken(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	token := validToken(1)

	if _, ok := router.Pending(); ok {
		t.Fatal("slot should start empty")
	}

	router.Route("twinup://invitation/" + token)
	pending, ok := router.Pending()
	if !ok {
		t.Fatal("slot should hold the routed token")
	}
	if pending.Token != token || pending.Processed {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestRouteOverwritesPendingToken(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	first := validToken(1)
	second := validToken(2)

	router.Route("twinup://invitation/" + first)
	router.Route("twinup://invitation/" + second)

	pending, ok := router.Pending()
	if !ok {
		t.Fatal("slot should hold a token")
	}
	if pending.Token != second {
		t.Fatalf("token = %s, want the later one", pending.Token)
	}
	if pending.Processed {
		t.Fatal("overwrite must reset processed")
	}
}

func TestNonInvitationRoutesLeaveSlotAlone(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	token := validToken(1)
	router.Route("twinup://invitation/" + token)

	router.Route("twinup://profile/user-42")
	router.Route("twinup://invitation/not-a-valid-token")

	pending, ok := router.Pending()
	if !ok || pending.Token != token {
		t.Fatalf("pending = %+v, ok = %v; slot should be untouched", pending, ok)
	}
}

func TestConsumePendingToken(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	token := validToken(3)
	router.Route("twinup://invitation/" + token)

	got, ok := router.ConsumePendingToken()
	if !ok || got != token {
		t.Fatalf("consume = %q, %v", got, ok)
	}

	// Second consume finds the slot already processed.
	if _, ok := router.ConsumePendingToken(); ok {
		t.Fatal("consume should fail once processed")
	}

	pending, ok := router.Pending()
	if !ok || !pending.Processed {
		t.Fatalf("pending = %+v, ok = %v; processed flag should persist", pending, ok)
	}
}

func TestConsumeEmptySlot(t *testing.T) {
	t.Parallel()

	if _, ok := NewRouter().ConsumePendingToken(); ok {
		t.Fatal("consume on empty slot should fail")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	router.Route("twinup://invitation/" + validToken(4))
	router.Clear()
	if _, ok := router.Pending(); ok {
		t.Fatal("slot should be empty after clear")
	}
}
