package booking_request_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
)

// RequestStatus is the mentor's answer to a booking request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"

	// legacyRejected is an old synonym for declined that still exists in
	// stored rows. It is normalized on read and never written.
	legacyRejected = "rejected"
)

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 240
)

var (
	ErrRequestNotFound    = errors.New("booking request not found")
	ErrNotRequestOwner    = errors.New("unauthorized")
	ErrNotPending         = errors.New("only pending requests can be deleted")
	ErrAlreadyAnswered    = errors.New("booking request has already been answered")
	ErrMissingFields      = errors.New("mentor, date, start time and end time are required")
	ErrDateInPast         = errors.New("requested date must not be in the past")
	ErrEndNotAfterStart   = errors.New("end time must be after start time")
	ErrDurationOutOfRange = errors.New("session duration must be between 15 and 240 minutes")
	ErrResponseRequired   = errors.New("a response message is required when declining")
	ErrInvalidAnswer      = errors.New("status must be approved or declined")
	ErrInvalidTimeFormat  = errors.New("times must be in HH:MM format")
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
)

// NormalizeStatus maps stored status values onto the current enum.
func NormalizeStatus(s string) RequestStatus {
	if s == legacyRejected {
		return RequestDeclined
	}
	return RequestStatus(s)
}

// BookingRequest is a mentee's proposal for a slot, awaiting the mentor's
// approve/decline answer.
type BookingRequest struct {
	ID             uuid.UUID     `json:"id"`
	MenteeID       uuid.UUID     `json:"mentee_id"`
	MentorID       uuid.UUID     `json:"mentor_id"`
	RequestedDate  string        `json:"requested_date"` // YYYY-MM-DD
	StartTime      string        `json:"start_time"`     // HH:MM
	EndTime        string        `json:"end_time"`       // HH:MM
	Status         RequestStatus `json:"status"`
	Message        *string       `json:"message,omitempty"`
	MentorResponse *string       `json:"mentor_response,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// MentorProfile is the public mentor summary joined onto request reads.
type MentorProfile struct {
	Name      string   `json:"name"`
	Username  string   `json:"username"`
	Picture   *string  `json:"picture,omitempty"`
	Headline  *string  `json:"headline,omitempty"`
	Expertise []string `json:"expertise"`
}

// BookingRequestWithMentor is the shape the UI renders right after
// creating or listing requests.
type BookingRequestWithMentor struct {
	BookingRequest
	Mentor MentorProfile `json:"mentor"`
}

func parseClockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidTimeFormat
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateWindow checks the requested slot before anything is persisted.
// The date comparison is date-only: a request for today is fine whatever
// the time of day.
func ValidateWindow(date, startTime, endTime string, now time.Time) error {
	if date == "" || startTime == "" || endTime == "" {
		return ErrMissingFields
	}

	requested, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return ErrInvalidDateFormat
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if requested.Before(today) {
		return ErrDateInPast
	}

	startMin, err := parseClockMinutes(startTime)
	if err != nil {
		return err
	}
	endMin, err := parseClockMinutes(endTime)
	if err != nil {
		return err
	}

	if startMin >= endMin {
		return ErrEndNotAfterStart
	}

	duration := endMin - startMin
	if duration < MinDurationMinutes || duration > MaxDurationMinutes {
		return ErrDurationOutOfRange
	}
	return nil
}

const requestWithMentorQuery = `
	SELECT br.id, br.mentee_id, br.mentor_id, br.requested_date::text,
	       br.start_time, br.end_time, br.status, br.message, br.mentor_response, br.created_at,
	       m.name, m.username, m.picture, m.headline, m.expertise
	FROM booking_requests br
	JOIN mentors m ON m.user_id = br.mentor_id`

func scanRequestWithMentor(row pgx.Row) (*BookingRequestWithMentor, error) {
	r := &BookingRequestWithMentor{}
	var status string
	err := row.Scan(
		&r.ID, &r.MenteeID, &r.MentorID, &r.RequestedDate,
		&r.StartTime, &r.EndTime, &status, &r.Message, &r.MentorResponse, &r.CreatedAt,
		&r.Mentor.Name, &r.Mentor.Username, &r.Mentor.Picture, &r.Mentor.Headline, &r.Mentor.Expertise,
	)
	if err != nil {
		return nil, err
	}
	r.Status = NormalizeStatus(status)
	return r, nil
}

// Create validates and inserts a new request. Status is always forced to
// pending regardless of what the caller supplied. There is deliberately
// no availability check here: overlapping requests may coexist and the
// mentor arbitrates.
func Create(ctx context.Context, db *pgxpool.Pool, menteeID, mentorID uuid.UUID, date, startTime, endTime string, message *string) (*BookingRequestWithMentor, error) {
	if mentorID == uuid.Nil {
		return nil, ErrMissingFields
	}
	if err := ValidateWindow(date, startTime, endTime, time.Now()); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO booking_requests (id, mentee_id, mentor_id, requested_date, start_time, end_time, status, message)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)`,
		id, menteeID, mentorID, date, startTime, endTime, message,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking request for mentor %s: %v", mentorID, err)
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}

	created, err := scanRequestWithMentor(db.QueryRow(ctx, requestWithMentorQuery+` WHERE br.id = $1`, id))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to re-read booking request %s: %v", id, err)
		return nil, fmt.Errorf("failed to load created booking request: %w", err)
	}

	logger.InfoLogger.Infof("Booking request %s created by mentee %s for mentor %s", id, menteeID, mentorID)
	return created, nil
}

// ListForMentee returns the mentee's own requests joined with the mentor
// profile, newest first.
func ListForMentee(ctx context.Context, db *pgxpool.Pool, menteeID uuid.UUID) ([]BookingRequestWithMentor, error) {
	rows, err := db.Query(ctx, requestWithMentorQuery+` WHERE br.mentee_id = $1 ORDER BY br.created_at DESC`, menteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListForMentor returns the requests addressed to a mentor, pending
// first, newest within each group.
func ListForMentor(ctx context.Context, db *pgxpool.Pool, mentorID uuid.UUID) ([]BookingRequestWithMentor, error) {
	rows, err := db.Query(ctx, requestWithMentorQuery+`
		WHERE br.mentor_id = $1
		ORDER BY (br.status = 'pending') DESC, br.created_at DESC`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]BookingRequestWithMentor, error) {
	var requests []BookingRequestWithMentor
	for rows.Next() {
		r := BookingRequestWithMentor{}
		var status string
		if err := rows.Scan(
			&r.ID, &r.MenteeID, &r.MentorID, &r.RequestedDate,
			&r.StartTime, &r.EndTime, &status, &r.Message, &r.MentorResponse, &r.CreatedAt,
			&r.Mentor.Name, &r.Mentor.Username, &r.Mentor.Picture, &r.Mentor.Headline, &r.Mentor.Expertise,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		r.Status = NormalizeStatus(status)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Respond records the mentor's answer. Only pending rows scoped to the
// responding mentor transition; anything else means the request is gone,
// belongs to someone else, or was already answered.
func Respond(ctx context.Context, db *pgxpool.Pool, mentorID, requestID uuid.UUID, answer RequestStatus, response *string) (*BookingRequest, error) {
	if answer != RequestApproved && answer != RequestDeclined {
		return nil, ErrInvalidAnswer
	}
	if answer == RequestDeclined && (response == nil || *response == "") {
		return nil, ErrResponseRequired
	}

	r := &BookingRequest{}
	var status string
	err := db.QueryRow(ctx, `
		UPDATE booking_requests
		SET status = $1, mentor_response = $2
		WHERE id = $3 AND mentor_id = $4 AND status = 'pending'
		RETURNING id, mentee_id, mentor_id, requested_date::text, start_time, end_time, status, message, mentor_response, created_at`,
		answer, response, requestID, mentorID,
	).Scan(
		&r.ID, &r.MenteeID, &r.MentorID, &r.RequestedDate,
		&r.StartTime, &r.EndTime, &status, &r.Message, &r.MentorResponse, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, respondFailure(ctx, db, mentorID, requestID)
		}
		logger.ErrorLogger.Errorf("Failed to respond to booking request %s: %v", requestID, err)
		return nil, fmt.Errorf("failed to respond to booking request: %w", err)
	}
	r.Status = NormalizeStatus(status)

	logger.InfoLogger.Infof("Booking request %s %s by mentor %s", requestID, answer, mentorID)
	return r, nil
}

// respondFailure distinguishes why the guarded update matched nothing.
func respondFailure(ctx context.Context, db *pgxpool.Pool, mentorID, requestID uuid.UUID) error {
	var ownerID uuid.UUID
	var status string
	err := db.QueryRow(ctx, `SELECT mentor_id, status FROM booking_requests WHERE id = $1`, requestID).Scan(&ownerID, &status)
	if err != nil {
		return ErrRequestNotFound
	}
	if ownerID != mentorID {
		return ErrNotRequestOwner
	}
	return ErrAlreadyAnswered
}

// deleteGuard decides whether a mentee may delete a request. Ownership
// is checked before status, so a foreign request never leaks whether it
// was already answered.
func deleteGuard(ownerID, menteeID uuid.UUID, status string) error {
	if ownerID != menteeID {
		return ErrNotRequestOwner
	}
	if NormalizeStatus(status) != RequestPending {
		return ErrNotPending
	}
	return nil
}

// Delete removes a request. Only the owning mentee may delete, and only
// while the request is still pending. The delete itself is scoped by
// mentee_id again as a second filter.
func Delete(ctx context.Context, db *pgxpool.Pool, menteeID, requestID uuid.UUID) error {
	var ownerID uuid.UUID
	var status string
	err := db.QueryRow(ctx, `SELECT mentee_id, status FROM booking_requests WHERE id = $1`, requestID).Scan(&ownerID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to fetch booking request: %w", err)
	}

	if err := deleteGuard(ownerID, menteeID, status); err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `DELETE FROM booking_requests WHERE id = $1 AND mentee_id = $2`, requestID, menteeID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete booking request %s: %v", requestID, err)
		return fmt.Errorf("failed to delete booking request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	logger.InfoLogger.Infof("Booking request %s deleted by mentee %s", requestID, menteeID)
	return nil
}
