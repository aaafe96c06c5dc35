package booking_models

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(status Status) *Booking {
	return &Booking{
		ID:            uuid.New(),
		StudentID:     uuid.New(),
		MentorID:      uuid.New(),
		Status:        status,
		PaymentStatus: PaymentPending,
		TotalAmount:   500,
	}
}

func TestRoleOf(t *testing.T) {
	b := newTestBooking(StatusPending)

	role, err := b.RoleOf(b.MentorID)
	require.NoError(t, err)
	assert.Equal(t, RoleMentor, role)

	role, err = b.RoleOf(b.StudentID)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, role)

	_, err = b.RoleOf(uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestConfirm(t *testing.T) {
	t.Run("MentorConfirmsPending", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		err := b.Apply(TransitionInput{Action: ActionConfirm, Role: RoleMentor})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.Equal(t, PaymentPending, b.PaymentStatus)
		require.NotNil(t, b.Message)
		assert.Contains(t, *b.Message, "Meeting link: https://meet.jit.si/mentorloop-")
	})

	t.Run("MeetLinkAppendedToExistingMessage", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		msg := "looking forward to it"
		b.Message = &msg
		err := b.Apply(TransitionInput{Action: ActionConfirm, Role: RoleMentor})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(*b.Message, "looking forward to it\n"))
		assert.Contains(t, *b.Message, "Meeting link: ")
	})

	t.Run("StudentCannotConfirm", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		err := b.Apply(TransitionInput{Action: ActionConfirm, Role: RoleStudent})
		assert.ErrorIs(t, err, ErrRoleNotAllowed)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("CannotConfirmTwice", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionConfirm, Role: RoleMentor})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("CannotConfirmCancelled", func(t *testing.T) {
		b := newTestBooking(StatusCancelled)
		err := b.Apply(TransitionInput{Action: ActionConfirm, Role: RoleMentor})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestComplete(t *testing.T) {
	t.Run("MentorCompletesConfirmedWithPayment", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleMentor, PaymentStatus: PaymentPaid})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, b.Status)
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
	})

	t.Run("PaymentUnchangedWhenNotSupplied", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleMentor})
		require.NoError(t, err)
		assert.Equal(t, PaymentPending, b.PaymentStatus)
	})

	t.Run("MentorCompletesPending", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleMentor})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, b.Status)
	})

	t.Run("StudentCannotComplete", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleStudent})
		assert.ErrorIs(t, err, ErrRoleNotAllowed)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("InvalidPaymentStatusRejected", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleMentor, PaymentStatus: "gifted"})
		assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.Equal(t, PaymentPending, b.PaymentStatus)
	})

	t.Run("CannotCompleteCompleted", func(t *testing.T) {
		b := newTestBooking(StatusCompleted)
		err := b.Apply(TransitionInput{Action: ActionComplete, Role: RoleMentor})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Run("StudentCancelGetsRefund", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	})

	t.Run("MentorCancelLeavesPaymentAlone", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		b.PaymentStatus = PaymentPaid
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleMentor})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, PaymentPaid, b.PaymentStatus)
	})

	t.Run("MentorCancelWithRefundedPaymentStatus", func(t *testing.T) {
		b := newTestBooking(StatusConfirmed)
		b.PaymentStatus = PaymentPaid
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleMentor, PaymentStatus: PaymentRefunded})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	})

	t.Run("MentorCancelWithExplicitRefund", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		b.PaymentStatus = PaymentPaid
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleMentor, RefundRequested: true})
		require.NoError(t, err)
		assert.Equal(t, PaymentRefunded, b.PaymentStatus)
	})

	t.Run("CancelFromPending", func(t *testing.T) {
		b := newTestBooking(StatusPending)
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleMentor})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
	})

	t.Run("CannotCancelCompleted", func(t *testing.T) {
		b := newTestBooking(StatusCompleted)
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleStudent})
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Equal(t, StatusCompleted, b.Status)
	})

	t.Run("CannotCancelTwice", func(t *testing.T) {
		b := newTestBooking(StatusCancelled)
		err := b.Apply(TransitionInput{Action: ActionCancel, Role: RoleStudent})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestSlotConflict(t *testing.T) {
	t.Run("FilteredInsert", func(t *testing.T) {
		assert.True(t, slotConflict(pgx.ErrNoRows))
	})

	t.Run("ExclusionConstraint", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_mentor_no_overlap"}
		assert.True(t, slotConflict(err))
		assert.True(t, slotConflict(fmt.Errorf("insert: %w", err)))
	})

	t.Run("OtherErrors", func(t *testing.T) {
		assert.False(t, slotConflict(&pgconn.PgError{Code: "23505"}))
		assert.False(t, slotConflict(errors.New("connection refused")))
	})
}

func TestUnknownAction(t *testing.T) {
	b := newTestBooking(StatusPending)
	err := b.Apply(TransitionInput{Action: "archive", Role: RoleMentor})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.Nil(t, b.Message)
}
