package review_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
)

var (
	ErrDuplicateReview = errors.New("you have already reviewed this session")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// Review is a participant's rating of a completed session. The store
// enforces one review per (booking, reviewer) pair.
type Review struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	MentorID   uuid.UUID `json:"mentor_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// isUniqueViolation reports whether err carries SQLSTATE 23505, the
// unique constraint on (booking_id, reviewer_id).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a review. A unique-violation from the store means the
// caller already reviewed this booking and is surfaced as a friendly
// conflict instead of a raw database error.
func Create(ctx context.Context, db *pgxpool.Pool, r *Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID: %w", err)
	}
	r.ID = id

	err = db.QueryRow(ctx, `
		INSERT INTO reviews (id, booking_id, reviewer_id, mentor_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		r.ID, r.BookingID, r.ReviewerID, r.MentorID, r.Rating, r.Comment,
	).Scan(&r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		logger.ErrorLogger.Errorf("Failed to insert review for booking %s: %v", r.BookingID, err)
		return fmt.Errorf("failed to create review: %w", err)
	}

	logger.InfoLogger.Infof("Review %s created for booking %s", r.ID, r.BookingID)
	return nil
}

// ListForMentor returns a mentor's reviews, newest first.
func ListForMentor(ctx context.Context, db *pgxpool.Pool, mentorID uuid.UUID) ([]Review, error) {
	rows, err := db.Query(ctx, `
		SELECT id, booking_id, reviewer_id, mentor_id, rating, comment, created_at
		FROM reviews WHERE mentor_id = $1 ORDER BY created_at DESC`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		r := Review{}
		if err := rows.Scan(&r.ID, &r.BookingID, &r.ReviewerID, &r.MentorID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
