package admin_models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Metrics is the aggregate snapshot served to admins.
type Metrics struct {
	TotalBookings          int64       `json:"total_bookings"`
	CompletedBookings      int64       `json:"completed_bookings"`
	CancelledBookings      int64       `json:"cancelled_bookings"`
	PendingBookingRequests int64       `json:"pending_booking_requests"`
	GrossRevenue           float64     `json:"gross_revenue"`
	CommissionRevenue      float64     `json:"commission_revenue"`
	TopMentors             []TopMentor `json:"top_mentors"`
}

// TopMentor ranks mentors by completed-session revenue.
type TopMentor struct {
	MentorID  uuid.UUID `json:"mentor_id"`
	Name      string    `json:"name"`
	Completed int64     `json:"completed_sessions"`
	Revenue   float64   `json:"revenue"`
}

// IsAdmin reports whether the user holds an admin role record.
func IsAdmin(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_roles WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}
	return exists, nil
}

// GetMetrics aggregates platform counts and revenue. Commission revenue
// applies each mentor's flat commission percentage to completed sessions.
func GetMetrics(ctx context.Context, db *pgxpool.Pool) (*Metrics, error) {
	m := &Metrics{}

	err := db.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'completed'),
		       count(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(sum(total_amount) FILTER (WHERE status = 'completed' AND payment_status = 'paid'), 0)
		FROM bookings`,
	).Scan(&m.TotalBookings, &m.CompletedBookings, &m.CancelledBookings, &m.GrossRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}

	err = db.QueryRow(ctx, `
		SELECT count(*) FROM booking_requests WHERE status = 'pending'`,
	).Scan(&m.PendingBookingRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}

	err = db.QueryRow(ctx, `
		SELECT COALESCE(sum(b.total_amount * mt.commission_pct / 100.0), 0)
		FROM bookings b
		JOIN mentors mt ON mt.user_id = b.mentor_id
		WHERE b.status = 'completed' AND b.payment_status = 'paid'`,
	).Scan(&m.CommissionRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate commission: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT b.mentor_id, mt.name,
		       count(*) FILTER (WHERE b.status = 'completed'),
		       COALESCE(sum(b.total_amount) FILTER (WHERE b.status = 'completed' AND b.payment_status = 'paid'), 0) AS revenue
		FROM bookings b
		JOIN mentors mt ON mt.user_id = b.mentor_id
		GROUP BY b.mentor_id, mt.name
		ORDER BY revenue DESC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("failed to rank mentors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t := TopMentor{}
		if err := rows.Scan(&t.MentorID, &t.Name, &t.Completed, &t.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top mentor: %w", err)
		}
		m.TopMentors = append(m.TopMentors, t)
	}
	return m, rows.Err()
}
