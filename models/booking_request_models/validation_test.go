package booking_request_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 1, 1, 13, 30, 0, 0, time.UTC)

func TestValidateWindow(t *testing.T) {
	t.Run("ValidTwentyMinuteSlot", func(t *testing.T) {
		err := ValidateWindow("2025-01-10", "09:00", "09:20", testNow)
		assert.NoError(t, err)
	})

	t.Run("MissingFields", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWindow("", "09:00", "10:00", testNow), ErrMissingFields)
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "", "10:00", testNow), ErrMissingFields)
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "09:00", "", testNow), ErrMissingFields)
	})

	t.Run("DateInPast", func(t *testing.T) {
		err := ValidateWindow("2024-12-31", "09:00", "10:00", testNow)
		assert.ErrorIs(t, err, ErrDateInPast)
	})

	t.Run("TodayIsAllowedWhateverTheTime", func(t *testing.T) {
		// now is 13:30; a morning slot today is still accepted because
		// the comparison is date-only.
		err := ValidateWindow("2025-01-01", "09:00", "10:00", testNow)
		assert.NoError(t, err)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		err := ValidateWindow("2025-01-10", "10:00", "09:00", testNow)
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("EndEqualsStart", func(t *testing.T) {
		err := ValidateWindow("2025-01-10", "09:00", "09:00", testNow)
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("DurationBoundaries", func(t *testing.T) {
		// 14 minutes fails, 15 passes.
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "09:00", "09:14", testNow), ErrDurationOutOfRange)
		assert.NoError(t, ValidateWindow("2025-01-10", "09:00", "09:15", testNow))

		// 240 minutes passes, 241 fails.
		assert.NoError(t, ValidateWindow("2025-01-10", "09:00", "13:00", testNow))
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "09:00", "13:01", testNow), ErrDurationOutOfRange)
	})

	t.Run("BadFormats", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWindow("10/01/2025", "09:00", "10:00", testNow), ErrInvalidDateFormat)
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "9am", "10:00", testNow), ErrInvalidTimeFormat)
		assert.ErrorIs(t, ValidateWindow("2025-01-10", "09:00", "25:00", testNow), ErrInvalidTimeFormat)
	})
}

func TestDeleteGuard(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("OwnerDeletesPending", func(t *testing.T) {
		assert.NoError(t, deleteGuard(owner, owner, "pending"))
	})

	t.Run("StrangerIsUnauthorized", func(t *testing.T) {
		assert.ErrorIs(t, deleteGuard(owner, stranger, "pending"), ErrNotRequestOwner)
	})

	// Ownership wins over status: a stranger probing an answered request
	// still just gets unauthorized.
	t.Run("StrangerOnAnsweredRequest", func(t *testing.T) {
		assert.ErrorIs(t, deleteGuard(owner, stranger, "approved"), ErrNotRequestOwner)
	})

	t.Run("AnsweredRequestsAreNotDeletable", func(t *testing.T) {
		for _, status := range []string{"approved", "declined", "rejected"} {
			assert.ErrorIs(t, deleteGuard(owner, owner, status), ErrNotPending, "status %s", status)
		}
	})
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, RequestDeclined, NormalizeStatus("rejected"))
	assert.Equal(t, RequestDeclined, NormalizeStatus("declined"))
	assert.Equal(t, RequestPending, NormalizeStatus("pending"))
	assert.Equal(t, RequestApproved, NormalizeStatus("approved"))
}
