package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/models/booking_models"
	"github.com/mentorloop/api/utils/mail"
)

// Mailer is what the worker needs from the mail package. Tests supply a
// fake.
type Mailer interface {
	SendSessionReminder(to string, data mail.ReminderData) error
	SendReviewRequest(to string, data mail.ReviewRequestData) error
}

// Store bindings, swapped out in tests.
var (
	dueReminders        = booking_models.DueReminders
	markReminderSent    = booking_models.MarkReminderSent
	dueReviewRequests   = booking_models.DueReviewRequests
	markReviewRequested = booking_models.MarkReviewRequested
)

// Summary reports one pass of the worker. A failed record never stops
// the loop; its error is collected here instead.
type Summary struct {
	RemindersSent  int      `json:"reminders_sent"`
	ReviewRequests int      `json:"review_requests_sent"`
	Errors         []string `json:"errors,omitempty"`
}

// ReminderWorker periodically sends session reminders and review
// requests. Idempotency lives in the database flags, so overlapping or
// restarted workers never double-send.
type ReminderWorker struct {
	db       *pgxpool.Pool
	mailer   Mailer
	interval time.Duration
	stopChan chan struct{}
}

func NewReminderWorker(db *pgxpool.Pool, mailer Mailer, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		db:       db,
		mailer:   mailer,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background loop. The first pass runs immediately.
func (w *ReminderWorker) Start(ctx context.Context) {
	logger.InfoLogger.Info("Starting reminder worker")
	go w.run(ctx)
}

// Stop terminates the background loop.
func (w *ReminderWorker) Stop() {
	logger.InfoLogger.Info("Stopping reminder worker")
	close(w.stopChan)
}

func (w *ReminderWorker) run(ctx context.Context) {
	w.runPass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runPass(ctx)
		case <-w.stopChan:
			logger.InfoLogger.Info("Reminder worker stopped")
			return
		case <-ctx.Done():
			logger.InfoLogger.Info("Reminder worker cancelled")
			return
		}
	}
}

func (w *ReminderWorker) runPass(ctx context.Context) {
	summary := w.RunOnce(ctx)
	if len(summary.Errors) > 0 {
		logger.WarnLogger.Warnf("Reminder pass finished with %d errors: %v", len(summary.Errors), summary.Errors)
	} else if summary.RemindersSent > 0 || summary.ReviewRequests > 0 {
		logger.InfoLogger.Infof("Reminder pass: %d reminders, %d review requests", summary.RemindersSent, summary.ReviewRequests)
	}
}

// RunOnce executes a single pass over all due work.
func (w *ReminderWorker) RunOnce(ctx context.Context) Summary {
	s := Summary{}
	w.sendReminders(ctx, booking_models.Window24h, &s)
	w.sendReminders(ctx, booking_models.Window1h, &s)
	w.sendReviewRequests(ctx, &s)
	return s
}

func (w *ReminderWorker) sendReminders(ctx context.Context, window booking_models.ReminderWindow, s *Summary) {
	due, err := dueReminders(ctx, w.db, window)
	if err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("list %s reminders: %v", window, err))
		return
	}

	windowLabel := "24 hours"
	if window == booking_models.Window1h {
		windowLabel = "1 hour"
	}

	for _, c := range due {
		err := w.mailer.SendSessionReminder(c.StudentEmail, mail.ReminderData{
			StudentName: c.StudentName,
			MentorName:  c.MentorName,
			ServiceName: c.ServiceName,
			SessionTime: c.SessionTime,
			Window:      windowLabel,
		})
		if err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("booking %s: %v", c.BookingID, err))
			continue
		}
		if err := markReminderSent(ctx, w.db, c.BookingID, window); err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("booking %s: %v", c.BookingID, err))
			continue
		}
		s.RemindersSent++
	}
}

func (w *ReminderWorker) sendReviewRequests(ctx context.Context, s *Summary) {
	due, err := dueReviewRequests(ctx, w.db)
	if err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("list review requests: %v", err))
		return
	}

	for _, c := range due {
		err := w.mailer.SendReviewRequest(c.StudentEmail, mail.ReviewRequestData{
			StudentName: c.StudentName,
			MentorName:  c.MentorName,
			ServiceName: c.ServiceName,
		})
		if err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("booking %s: %v", c.BookingID, err))
			continue
		}
		if err := markReviewRequested(ctx, w.db, c.BookingID); err != nil {
			s.Errors = append(s.Errors, fmt.Sprintf("booking %s: %v", c.BookingID, err))
			continue
		}
		s.ReviewRequests++
	}
}
