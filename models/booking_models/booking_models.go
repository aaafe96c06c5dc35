package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
)

// Status is a booking's lifecycle state. Transitions are forward-moving
// except cancellation; the table in transitions.go is the sole authority.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks what happened to the session fee.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Role is the caller's relationship to a booking.
type Role string

const (
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrSlotUnavailable  = errors.New("the selected slot is unavailable, please choose another slot")
	ErrNotParticipant   = errors.New("caller is neither the mentor nor the student of this booking")
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")
)

// Booking is a scheduled mentoring session, independent of any
// BookingRequest that may have preceded it.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	StudentID       uuid.UUID     `json:"student_id"`
	MentorID        uuid.UUID     `json:"mentor_id"`
	SessionTime     time.Time     `json:"session_time"`
	DurationMinutes int           `json:"duration_minutes"`
	ServiceType     string        `json:"service_type"`
	ServiceName     string        `json:"service_name"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	TotalAmount     float64       `json:"total_amount"`
	Message         *string       `json:"message,omitempty"`
	Reminder24hSent bool          `json:"reminder_24h_sent"`
	Reminder1hSent  bool          `json:"reminder_1h_sent"`
	ReviewRequested bool          `json:"review_requested"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// RoleOf returns the caller's role on the booking.
func (b *Booking) RoleOf(userID uuid.UUID) (Role, error) {
	switch userID {
	case b.MentorID:
		return RoleMentor, nil
	case b.StudentID:
		return RoleStudent, nil
	default:
		return "", ErrNotParticipant
	}
}

const bookingColumns = `id, student_id, mentor_id, session_time, duration_minutes,
	service_type, service_name, status, payment_status, total_amount, message,
	reminder_24h_sent, reminder_1h_sent, review_requested, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.StudentID, &b.MentorID, &b.SessionTime, &b.DurationMinutes,
		&b.ServiceType, &b.ServiceName, &b.Status, &b.PaymentStatus, &b.TotalAmount, &b.Message,
		&b.Reminder24hSent, &b.Reminder1hSent, &b.ReviewRequested, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookingByID fetches a booking record by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	b, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// slotConflict reports whether the insert lost the slot: either the
// overlap filter matched nothing, or the bookings_mentor_no_overlap
// exclusion constraint fired (SQLSTATE 23P01) because a concurrent
// insert slipped past the filter first.
func slotConflict(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// InsertIfAvailable inserts the booking only when the mentor has no other
// pending or confirmed booking overlapping the requested window. The
// availability check and the insert are one statement, backed by an
// exclusion constraint for the window two concurrent inserts can race
// through.
func InsertIfAvailable(ctx context.Context, db *pgxpool.Pool, b *Booking) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate UUID: %w", err)
		}
		b.ID = id
	}

	query := `
		INSERT INTO bookings (
			id, student_id, mentor_id, session_time, duration_minutes,
			service_type, service_name, status, payment_status, total_amount, message
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, 'pending', 'pending', $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE mentor_id = $3
			  AND status IN ('pending', 'confirmed')
			  AND tstzrange(session_time, session_time + make_interval(mins => duration_minutes))
			      && tstzrange($4::timestamptz, $4::timestamptz + make_interval(mins => $5))
		)
		RETURNING status, payment_status, created_at, updated_at`

	err := db.QueryRow(ctx, query,
		b.ID, b.StudentID, b.MentorID, b.SessionTime, b.DurationMinutes,
		b.ServiceType, b.ServiceName, b.TotalAmount, b.Message,
	).Scan(&b.Status, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		if slotConflict(err) {
			return ErrSlotUnavailable
		}
		logger.ErrorLogger.Errorf("Failed to insert booking for mentor %s: %v", b.MentorID, err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s created for mentor %s at %s", b.ID, b.MentorID, b.SessionTime)
	return nil
}

// SaveTransition persists the outcome of Apply. The update is guarded by
// the status the transition started from so a concurrent transition loses
// cleanly instead of overwriting.
func SaveTransition(ctx context.Context, db *pgxpool.Pool, b *Booking, from Status) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, message = $3, updated_at = now()
		WHERE id = $4 AND status = $5
		RETURNING updated_at`

	err := db.QueryRow(ctx, query, b.Status, b.PaymentStatus, b.Message, b.ID, from).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConcurrentUpdate
		}
		logger.ErrorLogger.Errorf("Failed to update booking %s: %v", b.ID, err)
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// ListForUser returns the bookings where the user is either party, newest
// session first.
func ListForUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE student_id = $1 OR mentor_id = $1
		ORDER BY session_time DESC`, bookingColumns)

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b := Booking{}
		if err := rows.Scan(
			&b.ID, &b.StudentID, &b.MentorID, &b.SessionTime, &b.DurationMinutes,
			&b.ServiceType, &b.ServiceName, &b.Status, &b.PaymentStatus, &b.TotalAmount, &b.Message,
			&b.Reminder24hSent, &b.Reminder1hSent, &b.ReviewRequested, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
