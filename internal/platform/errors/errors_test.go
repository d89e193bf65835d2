package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	first := New(CodeInvitationExpired, "invitation expired")
	second := New(CodeInvitationExpired, "different message, same code")

	if !stderrors.Is(first, second) {
		t.Fatal("expected errors with equal codes to match")
	}
	if stderrors.Is(first, New(CodeNotFound, "invitation not found")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeStorageFailure, "persist invitation", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "persist invitation" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCodeOfWalksChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeInvitationRateLimited, "too many invitations")
	wrapped := fmt.Errorf("create invitation: %w", inner)

	if got := CodeOf(wrapped); got != CodeInvitationRateLimited {
		t.Fatalf("CodeOf = %s, want %s", got, CodeInvitationRateLimited)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain error = %s, want %s", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf nil = %s, want %s", got, CodeUnknown)
	}
}
