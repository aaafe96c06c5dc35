package booking_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReminderWindow selects which reminder flag a query operates on.
type ReminderWindow string

const (
	Window24h ReminderWindow = "24h"
	Window1h  ReminderWindow = "1h"
)

func (w ReminderWindow) flagColumn() (string, error) {
	switch w {
	case Window24h:
		return "reminder_24h_sent", nil
	case Window1h:
		return "reminder_1h_sent", nil
	default:
		return "", fmt.Errorf("unknown reminder window: %s", w)
	}
}

func (w ReminderWindow) interval() string {
	if w == Window1h {
		return "1 hour"
	}
	return "24 hours"
}

// ReminderCandidate is a booking due for an email, joined with the
// recipient's contact details.
type ReminderCandidate struct {
	BookingID    uuid.UUID
	SessionTime  time.Time
	ServiceName  string
	StudentEmail string
	StudentName  string
	MentorName   string
}

// DueReminders lists confirmed bookings whose session starts within the
// window and whose flag for that window is still unset.
func DueReminders(ctx context.Context, db *pgxpool.Pool, w ReminderWindow) ([]ReminderCandidate, error) {
	flag, err := w.flagColumn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.session_time, b.service_name, su.email, su.full_name, mt.name
		FROM bookings b
		JOIN users su ON su.id = b.student_id
		JOIN mentors mt ON mt.user_id = b.mentor_id
		WHERE b.status = 'confirmed'
		  AND NOT b.%s
		  AND b.session_time BETWEEN now() AND now() + interval '%s'
		ORDER BY b.session_time`, flag, w.interval())

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var due []ReminderCandidate
	for rows.Next() {
		c := ReminderCandidate{}
		if err := rows.Scan(&c.BookingID, &c.SessionTime, &c.ServiceName, &c.StudentEmail, &c.StudentName, &c.MentorName); err != nil {
			return nil, fmt.Errorf("failed to scan reminder candidate: %w", err)
		}
		due = append(due, c)
	}
	return due, rows.Err()
}

// MarkReminderSent sets the window's flag. Flags only ever go from false
// to true, which is what makes reminder delivery idempotent.
func MarkReminderSent(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, w ReminderWindow) error {
	flag, err := w.flagColumn()
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, fmt.Sprintf(`UPDATE bookings SET %s = true, updated_at = now() WHERE id = $1`, flag), bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

// DueReviewRequests lists completed sessions older than an hour whose
// student has not been asked for a review yet.
func DueReviewRequests(ctx context.Context, db *pgxpool.Pool) ([]ReminderCandidate, error) {
	rows, err := db.Query(ctx, `
		SELECT b.id, b.session_time, b.service_name, su.email, su.full_name, mt.name
		FROM bookings b
		JOIN users su ON su.id = b.student_id
		JOIN mentors mt ON mt.user_id = b.mentor_id
		WHERE b.status = 'completed'
		  AND NOT b.review_requested
		  AND b.session_time < now() - interval '1 hour'
		ORDER BY b.session_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to list due review requests: %w", err)
	}
	defer rows.Close()

	var due []ReminderCandidate
	for rows.Next() {
		c := ReminderCandidate{}
		if err := rows.Scan(&c.BookingID, &c.SessionTime, &c.ServiceName, &c.StudentEmail, &c.StudentName, &c.MentorName); err != nil {
			return nil, fmt.Errorf("failed to scan review request candidate: %w", err)
		}
		due = append(due, c)
	}
	return due, rows.Err()
}

// MarkReviewRequested flags the booking so the student is asked once.
func MarkReviewRequested(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE bookings SET review_requested = true, updated_at = now() WHERE id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark review requested: %w", err)
	}
	return nil
}
