package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/twinup/pairlink/internal/platform/errors"
	"github.com/twinup/pairlink/internal/transport"
)

// ErrChannelUnavailable indicates the host offers no transport for a channel.
var ErrChannelUnavailable = apperrors.New(apperrors.CodeChannelUnavailable, "delivery channel unavailable")

// dispatch hands the invitation to the channels selected by method. For
// MethodBoth overall success is the boolean OR of the two channels; a partial
// failure leaves the record marked sent and surfaces a combined error.
func (s *Service) dispatch(ctx context.Context, invitation Invitation, method Method) (Invitation, SendResult, error) {
	result := SendResult{}
	var sendErrs []error
	draftKept := false

	// For MethodBoth a missing contact field skips that channel instead of
	// reporting a delivery failure; single-channel methods still require
	// their contact.
	attemptEmail := method == MethodEmail || (method == MethodBoth && invitation.RecipientEmail != "")
	attemptSMS := method == MethodSMS || (method == MethodBoth && invitation.RecipientPhone != "")

	if attemptEmail {
		result.EmailAttempted = true
		outcome, err := s.sendEmail(ctx, &invitation)
		switch {
		case err != nil:
			sendErrs = append(sendErrs, fmt.Errorf("email: %w", err))
		case outcome == transport.EmailOutcomeSent:
			result.EmailSent = true
		case outcome == transport.EmailOutcomeSaved:
			draftKept = true
		}
	}
	if attemptSMS {
		result.SMSAttempted = true
		sent, err := s.sendSMS(ctx, &invitation)
		if err != nil {
			sendErrs = append(sendErrs, fmt.Errorf("sms: %w", err))
		}
		result.SMSSent = sent
	}

	// A resend of an already-sent record keeps its status; only the first
	// delivery transitions and announces.
	if result.Delivered() && invitation.Status == StatusPending {
		now := s.clock().UTC()
		if err := s.transitionLocked(ctx, &invitation, StatusSent, now); err != nil {
			return invitation, result, err
		}
		s.publish(ctx, TopicSent, invitation)
	}

	switch {
	case len(sendErrs) == 0 && result.Delivered():
		result.Outcome = SendOutcomeSent
		return invitation, result, nil
	case len(sendErrs) == 0 && draftKept:
		result.Outcome = SendOutcomeAlreadyHandled
		return invitation, result, nil
	case len(sendErrs) == 0:
		result.Outcome = SendOutcomeDeclined
		return invitation, result, nil
	default:
		combined := errors.Join(sendErrs...)
		result.Reason = humanizeSendErrors(sendErrs)
		if result.Delivered() {
			result.Outcome = SendOutcomeSent
		} else {
			result.Outcome = SendOutcomeFailed
		}
		return invitation, result, apperrors.Wrap(failureCode(sendErrs), result.Reason, combined)
	}
}

// sendEmail hands the invitation to the email composer and reports the
// compose outcome. A transport failure increments the attempt count and is
// re-raised; a kept draft or cancelled flow is not a failure.
func (s *Service) sendEmail(ctx context.Context, invitation *Invitation) (transport.EmailOutcome, error) {
	if invitation.RecipientEmail == "" {
		return "", ErrContactMissing
	}
	if s.email == nil || !s.email.Available() {
		return "", apperrors.WithMetadata(apperrors.CodeChannelUnavailable,
			"email channel unavailable", map[string]string{"channel": "Email"})
	}

	outcome, err := s.email.ComposeEmail(ctx, transport.EmailMessage{
		Recipient: invitation.RecipientEmail,
		Subject:   emailSubject(*invitation),
		Body:      emailBody(*invitation),
	})
	if err != nil {
		s.recordFailedAttempt(ctx, invitation)
		return "", apperrors.Wrap(apperrors.CodeTransportFailure, "compose invitation email", err)
	}
	return outcome, nil
}

// sendSMS hands the invitation to the SMS composer. The SMS channel has no
// draft state: anything other than a completed hand-off is a failure.
func (s *Service) sendSMS(ctx context.Context, invitation *Invitation) (bool, error) {
	if invitation.RecipientPhone == "" {
		return false, ErrContactMissing
	}
	if s.sms == nil || !s.sms.Available() {
		return false, apperrors.WithMetadata(apperrors.CodeChannelUnavailable,
			"sms channel unavailable", map[string]string{"channel": "Text messaging"})
	}

	outcome, err := s.sms.ComposeSMS(ctx, transport.SMSMessage{
		Recipient: invitation.RecipientPhone,
		Body:      smsBody(*invitation),
	})
	if err != nil {
		s.recordFailedAttempt(ctx, invitation)
		return false, apperrors.Wrap(apperrors.CodeTransportFailure, "compose invitation sms", err)
	}
	if outcome != transport.SMSOutcomeSent {
		s.recordFailedAttempt(ctx, invitation)
		return false, apperrors.New(apperrors.CodeTransportFailure, "sms carrier hand-off failed")
	}
	return true, nil
}

// recordFailedAttempt bumps the attempt counter. A storage error here must
// not mask the transport failure being reported, so it is swallowed and the
// in-memory record is left untouched.
func (s *Service) recordFailedAttempt(ctx context.Context, invitation *Invitation) {
	now := s.clock().UTC()
	if err := s.store.IncrementAttempt(ctx, invitation.ID, now); err == nil {
		invitation.AttemptCount++
		invitation.LastAttemptAt = now
	}
}

// failureCode picks the code reported for a failed dispatch. When every
// attempted channel failed for the same taxonomy reason that code is kept,
// so an unavailable channel still renders its own user message; mixed
// outcomes collapse to a transport failure.
func failureCode(sendErrs []error) apperrors.Code {
	code := apperrors.CodeOf(sendErrs[0])
	for _, err := range sendErrs[1:] {
		if apperrors.CodeOf(err) != code {
			return apperrors.CodeTransportFailure
		}
	}
	if code == apperrors.CodeUnknown {
		return apperrors.CodeTransportFailure
	}
	return code
}

func humanizeSendErrors(sendErrs []error) string {
	parts := make([]string, 0, len(sendErrs))
	for _, err := range sendErrs {
		parts = append(parts, err.Error())
	}
	return "invitation delivery incomplete: " + strings.Join(parts, "; ")
}

func emailSubject(invitation Invitation) string {
	return fmt.Sprintf("%s invited you to pair up", invitation.InviterName)
}

func emailBody(invitation Invitation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants to pair with you.\n\n", invitation.InviterName)
	fmt.Fprintf(&b, "Open this link to accept:\n%s\n\n", invitation.DeepLink)
	fmt.Fprintf(&b, "Or enter this code manually:\n%s\n\n", invitation.Token)
	fmt.Fprintf(&b, "This invitation expires on %s.\n", invitation.ExpiresAt.Format("Jan 2, 2006"))
	return b.String()
}

func smsBody(invitation Invitation) string {
	return fmt.Sprintf("%s invited you to pair up. Accept here: %s", invitation.InviterName, invitation.DeepLink)
}
