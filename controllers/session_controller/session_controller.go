package session_controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/models/booking_models"
	"github.com/mentorloop/api/models/mentor_models"
	"github.com/mentorloop/api/utils"
)

// SessionController serves the book-session and manage-session endpoints.
type SessionController struct {
	DB *pgxpool.Pool
}

func NewSessionController(db *pgxpool.Pool) *SessionController {
	return &SessionController{DB: db}
}

type bookSessionBody struct {
	MentorID    string    `json:"mentor_id" binding:"required"`
	SessionTime time.Time `json:"session_time" binding:"required"`
	Duration    int       `json:"duration" binding:"required,gt=0"`
	SessionType string    `json:"session_type" binding:"required"`
	Message     *string   `json:"message"`
}

type manageSessionBody struct {
	SessionID     string `json:"session_id" binding:"required"`
	Action        string `json:"action" binding:"required"`
	PaymentStatus string `json:"payment_status"`
	Refund        bool   `json:"refund"`
}

// BookSession creates a booking for the authenticated student. Pricing
// comes from the mentor's service table and the availability check is
// part of the insert itself, so a taken slot answers 409 without a race
// window.
func (sc *SessionController) BookSession(c *gin.Context) {
	studentID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var body bookSessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	mentorID, err := uuid.Parse(body.MentorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mentor_id must be a valid UUID"})
		return
	}

	ctx := c.Request.Context()

	if _, err := mentor_models.GetMentorByUserID(ctx, sc.DB, mentorID); err != nil {
		if errors.Is(err, mentor_models.ErrMentorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Mentor not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to load mentor %s: %v", mentorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load mentor"})
		return
	}

	services, err := mentor_models.ListEnabledServices(ctx, sc.DB, mentorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load services for mentor %s: %v", mentorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load mentor services"})
		return
	}

	service, err := mentor_models.SelectService(services, body.SessionType)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	booking := &booking_models.Booking{
		StudentID:       studentID,
		MentorID:        mentorID,
		SessionTime:     body.SessionTime,
		DurationMinutes: body.Duration,
		ServiceType:     body.SessionType,
		ServiceName:     service.ServiceName,
		TotalAmount:     service.Price,
		Message:         body.Message,
	}

	if err := booking_models.InsertIfAvailable(ctx, sc.DB, booking); err != nil {
		if errors.Is(err, booking_models.ErrSlotUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.ErrorLogger.Errorf("Failed to create booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Session booked", "data": booking})
}

// ManageSession moves a booking through confirm/complete/cancel. The
// transition table in booking_models decides legality; this handler only
// resolves the caller's role and maps errors to status codes.
func (sc *SessionController) ManageSession(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var body manageSessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	sessionID, err := uuid.Parse(body.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "session_id must be a valid UUID"})
		return
	}

	ctx := c.Request.Context()

	booking, err := booking_models.GetBookingByID(ctx, sc.DB, sessionID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Session not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to load booking %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load session"})
		return
	}

	role, err := booking.RoleOf(userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You are not a participant of this session"})
		return
	}

	from := booking.Status
	err = booking.Apply(booking_models.TransitionInput{
		Action:          booking_models.SessionAction(body.Action),
		Role:            role,
		PaymentStatus:   booking_models.PaymentStatus(body.PaymentStatus),
		RefundRequested: body.Refund,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking_models.ErrRoleNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, booking_models.ErrUnknownAction),
			errors.Is(err, booking_models.ErrIllegalTransition),
			errors.Is(err, booking_models.ErrInvalidPaymentStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Failed transition on booking %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update session"})
		}
		return
	}

	if err := booking_models.SaveTransition(ctx, sc.DB, booking, from); err != nil {
		if errors.Is(err, booking_models.ErrConcurrentUpdate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.ErrorLogger.Errorf("Failed to save transition for booking %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update session"})
		return
	}

	logger.InfoLogger.Infof("Booking %s: %s by %s (%s)", sessionID, body.Action, userID, role)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session updated", "data": booking})
}

// ListMySessions returns the caller's bookings in either role.
func (sc *SessionController) ListMySessions(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	bookings, err := booking_models.ListForUser(c.Request.Context(), sc.DB, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list sessions for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": bookings})
}
