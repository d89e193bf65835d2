package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                   = "UNKNOWN"
	CodeInvitationContactMissing  = "INVITATION_CONTACT_MISSING"
	CodeInvitationInviterMissing  = "INVITATION_INVITER_MISSING"
	CodeInvitationTokenMalformed  = "INVITATION_TOKEN_MALFORMED"
	CodeInvitationInvalidChannel  = "INVITATION_INVALID_CHANNEL"
	CodeInvitationInvalidStatus   = "INVITATION_INVALID_STATUS_TRANSITION"
	CodeInvitationRateLimited     = "INVITATION_RATE_LIMIT_EXCEEDED"
	CodeNotFound                  = "NOT_FOUND"
	CodeInvitationAlreadyAccepted = "INVITATION_ALREADY_ACCEPTED"
	CodeInvitationDeclined        = "INVITATION_DECLINED"
	CodeInvitationExpired         = "INVITATION_EXPIRED"
	CodeInvitationMaxAttempts     = "INVITATION_MAX_ATTEMPTS_EXCEEDED"
	CodeChannelUnavailable        = "CHANNEL_UNAVAILABLE"
	CodeTransportFailure          = "TRANSPORT_FAILURE"
	CodeStorageFailure            = "STORAGE_FAILURE"
)

// messagesEnUS holds the user-facing English messages. Messages are
// deliberately non-technical; each code maps to a distinct message so the
// UI can render precise remediation guidance.
var messagesEnUS = map[Code]string{
	CodeUnknown:                   "Something went wrong. Please try again.",
	CodeInvitationContactMissing:  "Add an email address or phone number for your twin before sending.",
	CodeInvitationInviterMissing:  "Add your display name before sending an invitation.",
	CodeInvitationTokenMalformed:  "That invitation code doesn't look right. Check it and try again.",
	CodeInvitationInvalidChannel:  "Choose email, text message, or both to send your invitation.",
	CodeInvitationInvalidStatus:   "This invitation can't be updated any more.",
	CodeInvitationRateLimited:     "You've sent several invitations recently. Please wait a bit before sending another.",
	CodeNotFound:                  "We couldn't find that invitation. It may have been removed.",
	CodeInvitationAlreadyAccepted: "This invitation has already been accepted.",
	CodeInvitationDeclined:        "This invitation was declined.",
	CodeInvitationExpired:         "This invitation has expired. Ask your twin to send a new one.",
	CodeInvitationMaxAttempts:     "This invitation has reached its resend limit. Create a new one instead.",
	CodeChannelUnavailable:        "{{.channel}} isn't available on this device. Try another way to send.",
	CodeTransportFailure:          "We couldn't send your invitation. Check your connection and try again.",
	CodeStorageFailure:            "We couldn't save your changes. Please try again.",
}
