package i18n

import (
	"strings"
	"testing"
)

func TestGetCatalogFallback(t *testing.T) {
	t.Parallel()

	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog("xx-XX"); got != base {
		t.Fatal("expected unknown locale to fall back to en-US")
	}
	if got := GetCatalog(""); got.Locale() != BaseLocale {
		t.Fatalf("empty locale resolved to %s, want %s", got.Locale(), BaseLocale)
	}
}

func TestEveryCodeHasDistinctMessage(t *testing.T) {
	t.Parallel()

	codes := []Code{
		CodeInvitationContactMissing,
		CodeInvitationInviterMissing,
		CodeInvitationTokenMalformed,
		CodeInvitationInvalidChannel,
		CodeInvitationInvalidStatus,
		CodeInvitationRateLimited,
		CodeNotFound,
		CodeInvitationAlreadyAccepted,
		CodeInvitationDeclined,
		CodeInvitationExpired,
		CodeInvitationMaxAttempts,
		CodeChannelUnavailable,
		CodeTransportFailure,
		CodeStorageFailure,
	}

	catalog := GetCatalog(BaseLocale)
	seen := map[string]Code{}
	for _, code := range codes {
		message := catalog.Message(code, nil)
		if message == "" {
			t.Fatalf("code %s has no message", code)
		}
		if message == catalog.Message(CodeUnknown, nil) {
			t.Fatalf("code %s falls through to the unknown message", code)
		}
		if prior, dup := seen[message]; dup {
			t.Fatalf("codes %s and %s share the message %q", prior, code, message)
		}
		seen[message] = code
	}
}

func TestMessageAppliesMetadata(t *testing.T) {
	t.Parallel()

	catalog := GetCatalog(BaseLocale)
	message := catalog.Message(CodeChannelUnavailable, map[string]string{"channel": "Email"})
	if !strings.Contains(message, "Email") {
		t.Fatalf("expected channel name in message, got %q", message)
	}
}

func TestMessageUnknownCode(t *testing.T) {
	t.Parallel()

	catalog := GetCatalog(BaseLocale)
	if got := catalog.Message("NO_SUCH_CODE", nil); got != catalog.Message(CodeUnknown, nil) {
		t.Fatalf("unknown code message = %q", got)
	}
}
