package booking_models

import (
	"errors"
	"fmt"
)

// SessionAction is one of the three lifecycle operations on a booking.
type SessionAction string

const (
	ActionConfirm  SessionAction = "confirm"
	ActionComplete SessionAction = "complete"
	ActionCancel   SessionAction = "cancel"
)

var (
	ErrUnknownAction        = errors.New("unknown session action")
	ErrRoleNotAllowed       = errors.New("this action is not permitted for your role")
	ErrIllegalTransition    = errors.New("the session cannot transition from its current status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

type transitionKey struct {
	action SessionAction
	from   Status
}

type transitionRule struct {
	next       Status
	mentorOnly bool
}

// transitionTable is the single authority for legal status transitions.
// Anything not listed here is rejected.
var transitionTable = map[transitionKey]transitionRule{
	{ActionConfirm, StatusPending}:    {next: StatusConfirmed, mentorOnly: true},
	{ActionComplete, StatusPending}:   {next: StatusCompleted, mentorOnly: true},
	{ActionComplete, StatusConfirmed}: {next: StatusCompleted, mentorOnly: true},
	{ActionCancel, StatusPending}:     {next: StatusCancelled},
	{ActionCancel, StatusConfirmed}:   {next: StatusCancelled},
}

// TransitionInput carries the caller-controlled parts of a transition.
type TransitionInput struct {
	Action          SessionAction
	Role            Role
	PaymentStatus   PaymentStatus // on complete: new value; on cancel: "refunded" requests a refund
	RefundRequested bool          // only honored on cancel
}

// MeetLink synthesizes the meeting URL attached when a mentor confirms.
func MeetLink(bookingID fmt.Stringer) string {
	return "https://meet.jit.si/mentorloop-" + bookingID.String()
}

// Apply runs one transition against the in-memory booking. The caller is
// responsible for persisting the result with SaveTransition.
//
// Rules, per the transition table:
//   - confirm: mentor only, pending -> confirmed, meeting link appended
//     to the message, payment untouched.
//   - complete: mentor only, -> completed, payment set to the supplied
//     value when given.
//   - cancel: either party, -> cancelled; payment becomes refunded when
//     the student cancels or the caller asked for one, via the refund
//     flag or a payment status of refunded.
func (b *Booking) Apply(in TransitionInput) error {
	switch in.Action {
	case ActionConfirm, ActionComplete, ActionCancel:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, in.Action)
	}

	rule, ok := transitionTable[transitionKey{in.Action, b.Status}]
	if !ok {
		return fmt.Errorf("%w: cannot %s a %s session", ErrIllegalTransition, in.Action, b.Status)
	}
	if rule.mentorOnly && in.Role != RoleMentor {
		return fmt.Errorf("%w: only the mentor may %s a session", ErrRoleNotAllowed, in.Action)
	}

	switch in.Action {
	case ActionConfirm:
		link := MeetLink(b.ID)
		if b.Message != nil && *b.Message != "" {
			appended := *b.Message + "\nMeeting link: " + link
			b.Message = &appended
		} else {
			msg := "Meeting link: " + link
			b.Message = &msg
		}

	case ActionComplete:
		if in.PaymentStatus != "" {
			switch in.PaymentStatus {
			case PaymentPending, PaymentPaid, PaymentRefunded:
				b.PaymentStatus = in.PaymentStatus
			default:
				return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, in.PaymentStatus)
			}
		}

	case ActionCancel:
		if in.Role == RoleStudent || in.RefundRequested || in.PaymentStatus == PaymentRefunded {
			b.PaymentStatus = PaymentRefunded
		}
	}

	b.Status = rule.next
	return nil
}
