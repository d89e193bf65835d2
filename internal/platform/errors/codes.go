// Package errors provides structured error handling with user-facing messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Invitation validation errors
	CodeInvitationContactMissing Code = "INVITATION_CONTACT_MISSING"
	CodeInvitationInviterMissing Code = "INVITATION_INVITER_MISSING"
	CodeInvitationTokenMalformed Code = "INVITATION_TOKEN_MALFORMED"
	CodeInvitationInvalidChannel Code = "INVITATION_INVALID_CHANNEL"
	CodeInvitationInvalidStatus  Code = "INVITATION_INVALID_STATUS_TRANSITION"
	CodeInvitationRateLimited    Code = "INVITATION_RATE_LIMIT_EXCEEDED"

	// Invitation lifecycle errors
	CodeNotFound                  Code = "NOT_FOUND"
	CodeInvitationAlreadyAccepted Code = "INVITATION_ALREADY_ACCEPTED"
	CodeInvitationDeclined        Code = "INVITATION_DECLINED"
	CodeInvitationExpired         Code = "INVITATION_EXPIRED"
	CodeInvitationMaxAttempts     Code = "INVITATION_MAX_ATTEMPTS_EXCEEDED"

	// Delivery errors
	CodeChannelUnavailable Code = "CHANNEL_UNAVAILABLE"
	CodeTransportFailure   Code = "TRANSPORT_FAILURE"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)
