package mentor_models

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

var (
	ErrMentorNotFound     = errors.New("mentor not found")
	ErrNoBookableServices = errors.New("mentor has no bookable services")
)

// Mentor is the public mentor profile.
type Mentor struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Picture       *string   `json:"picture,omitempty"`
	Headline      *string   `json:"headline,omitempty"`
	Expertise     []string  `json:"expertise"`
	CommissionPct float64   `json:"commission_pct"`
	CreatedAt     time.Time `json:"created_at"`
}

// MentorService is one entry of a mentor's pricing table. All pricing in
// the system reads from this table; there is no flat price field.
type MentorService struct {
	ID              uuid.UUID `json:"id"`
	MentorID        uuid.UUID `json:"mentor_id"`
	ServiceType     string    `json:"service_type"`
	ServiceName     string    `json:"service_name"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	IsEnabled       bool      `json:"is_enabled"`
	CreatedAt       time.Time `json:"created_at"`
}

// GetMentorByUserID fetches a mentor profile by the owning user identity.
func GetMentorByUserID(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*Mentor, error) {
	m := &Mentor{}
	err := db.QueryRow(ctx, `
		SELECT id, user_id, name, username, picture, headline, expertise, commission_pct, created_at
		FROM mentors WHERE user_id = $1`, userID,
	).Scan(&m.ID, &m.UserID, &m.Name, &m.Username, &m.Picture, &m.Headline, &m.Expertise, &m.CommissionPct, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMentorNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch mentor for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching mentor: %w", err)
	}
	return m, nil
}

// ListEnabledServices returns a mentor's enabled services, cheapest first.
func ListEnabledServices(ctx context.Context, db *pgxpool.Pool, mentorUserID uuid.UUID) ([]MentorService, error) {
	rows, err := db.Query(ctx, `
		SELECT id, mentor_id, service_type, service_name, price, duration_minutes, is_enabled, created_at
		FROM mentor_services
		WHERE mentor_id = $1 AND is_enabled
		ORDER BY price ASC`, mentorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor services: %w", err)
	}
	defer rows.Close()

	var services []MentorService
	for rows.Next() {
		s := MentorService{}
		if err := rows.Scan(&s.ID, &s.MentorID, &s.ServiceType, &s.ServiceName, &s.Price,
			&s.DurationMinutes, &s.IsEnabled, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mentor service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// SelectService picks the service a booking should be priced from: the
// cheapest enabled service matching the requested type, else the cheapest
// enabled service overall. Input must already be sorted cheapest first,
// as ListEnabledServices returns it.
func SelectService(services []MentorService, serviceType string) (*MentorService, error) {
	if len(services) == 0 {
		return nil, ErrNoBookableServices
	}
	if serviceType != "" {
		for i := range services {
			if services[i].ServiceType == serviceType {
				return &services[i], nil
			}
		}
	}
	return &services[0], nil
}
