package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/twinup/pairlink/internal/platform/errors"
)

// TokenLength is the fixed hexadecimal length of invitation tokens.
const TokenLength = 64

const tokenBytes = 32

var tokenPattern = regexp.MustCompile(`^[0-9A-F]{64}$`)

// ErrTokenMalformed indicates a token that fails shape validation.
var ErrTokenMalformed = apperrors.New(apperrors.CodeInvitationTokenMalformed, "invitation token is malformed")

// NewToken draws 32 bytes from the cryptographic random source and renders
// them as 64 uppercase hexadecimal characters. A failing random source is
// fatal; there is no weaker fallback.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// ValidToken reports whether token already has the canonical shape.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// NormalizeToken upper-cases manual-entry input and validates its shape.
// Malformed tokens are rejected here, before any storage lookup.
func NormalizeToken(raw string) (string, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if !ValidToken(token) {
		return "", ErrTokenMalformed
	}
	return token, nil
}
