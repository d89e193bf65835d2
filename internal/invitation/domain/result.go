package domain

// SendOutcome classifies how a channel hand-off concluded. A typed outcome
// replaces bare booleans so callers never have to infer whether "false"
// meant failure, a saved draft, or a user-cancelled compose flow.
type SendOutcome string

const (
	// SendOutcomeSent means at least one channel completed the send action.
	SendOutcomeSent SendOutcome = "sent"
	// SendOutcomeDeclined means the user abandoned the compose flow.
	SendOutcomeDeclined SendOutcome = "declined"
	// SendOutcomeAlreadyHandled means the channel kept a draft; nothing left to do.
	SendOutcomeAlreadyHandled SendOutcome = "already_handled"
	// SendOutcomeFailed means every attempted channel failed.
	SendOutcomeFailed SendOutcome = "failed"
)

// SendResult reports the per-channel conclusions of one dispatch.
type SendResult struct {
	Outcome        SendOutcome
	EmailAttempted bool
	EmailSent      bool
	SMSAttempted   bool
	SMSSent        bool
	// Reason carries a human-readable explanation for failed or partially
	// failed dispatches.
	Reason string
}

// Delivered reports whether any channel completed the send.
func (r SendResult) Delivered() bool {
	return r.EmailSent || r.SMSSent
}
