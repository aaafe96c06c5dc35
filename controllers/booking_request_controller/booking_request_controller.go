package booking_request_controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/models/booking_request_models"
	"github.com/mentorloop/api/utils"
)

// ApprovalHook runs after a booking request is approved. Approval does
// not create a booking by itself; the student books separately. This
// hook is the extension point for wiring the two flows together later.
type ApprovalHook func(ctx context.Context, req *booking_request_models.BookingRequest)

// BookingRequestController handles the mentee/mentor request lifecycle.
type BookingRequestController struct {
	DB         *pgxpool.Pool
	OnApproval ApprovalHook
}

func NewBookingRequestController(db *pgxpool.Pool) *BookingRequestController {
	return &BookingRequestController{DB: db}
}

type createRequestBody struct {
	MentorID      string  `json:"mentor_id" binding:"required"`
	RequestedDate string  `json:"requested_date" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required"`
	EndTime       string  `json:"end_time" binding:"required"`
	Message       *string `json:"message"`
}

type respondBody struct {
	Status   string  `json:"status" binding:"required"`
	Response *string `json:"response"`
}

func isValidationError(err error) bool {
	return errors.Is(err, booking_request_models.ErrMissingFields) ||
		errors.Is(err, booking_request_models.ErrDateInPast) ||
		errors.Is(err, booking_request_models.ErrEndNotAfterStart) ||
		errors.Is(err, booking_request_models.ErrDurationOutOfRange) ||
		errors.Is(err, booking_request_models.ErrInvalidTimeFormat) ||
		errors.Is(err, booking_request_models.ErrInvalidDateFormat)
}

// CreateBookingRequest validates and stores a new request for the
// authenticated mentee.
func (bc *BookingRequestController) CreateBookingRequest(c *gin.Context) {
	menteeID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	mentorID, err := uuid.Parse(body.MentorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mentor_id must be a valid UUID"})
		return
	}

	created, err := booking_request_models.Create(c.Request.Context(), bc.DB, menteeID, mentorID,
		body.RequestedDate, body.StartTime, body.EndTime, body.Message)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.ErrorLogger.Errorf("Failed to create booking request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create booking request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Booking request created", "data": created})
}

// ListMyBookingRequests returns the authenticated mentee's requests.
func (bc *BookingRequestController) ListMyBookingRequests(c *gin.Context) {
	menteeID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	requests, err := booking_request_models.ListForMentee(c.Request.Context(), bc.DB, menteeID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list booking requests for mentee %s: %v", menteeID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load booking requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": requests})
}

// ListIncomingRequests returns requests addressed to the authenticated
// mentor, pending first.
func (bc *BookingRequestController) ListIncomingRequests(c *gin.Context) {
	mentorID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	requests, err := booking_request_models.ListForMentor(c.Request.Context(), bc.DB, mentorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list booking requests for mentor %s: %v", mentorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load booking requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": requests})
}

// RespondToBookingRequest records the mentor's approve/decline answer.
// Declining requires response text.
func (bc *BookingRequestController) RespondToBookingRequest(c *gin.Context) {
	mentorID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request ID"})
		return
	}

	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	answer := booking_request_models.NormalizeStatus(body.Status)
	updated, err := booking_request_models.Respond(c.Request.Context(), bc.DB, mentorID, requestID, answer, body.Response)
	if err != nil {
		switch {
		case errors.Is(err, booking_request_models.ErrInvalidAnswer),
			errors.Is(err, booking_request_models.ErrResponseRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, booking_request_models.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Booking request not found"})
		case errors.Is(err, booking_request_models.ErrNotRequestOwner):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Booking request does not belong to this mentor"})
		case errors.Is(err, booking_request_models.ErrAlreadyAnswered):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Failed to respond to booking request %s: %v", requestID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to respond to booking request"})
		}
		return
	}

	if updated.Status == booking_request_models.RequestApproved && bc.OnApproval != nil {
		bc.OnApproval(c.Request.Context(), updated)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Response recorded", "data": updated})
}

// DeleteBookingRequest removes the mentee's own request while it is
// still pending.
func (bc *BookingRequestController) DeleteBookingRequest(c *gin.Context) {
	menteeID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request ID"})
		return
	}

	err = booking_request_models.Delete(c.Request.Context(), bc.DB, menteeID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, booking_request_models.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Booking request not found"})
		case errors.Is(err, booking_request_models.ErrNotRequestOwner):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "unauthorized"})
		case errors.Is(err, booking_request_models.ErrNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Failed to delete booking request %s: %v", requestID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete booking request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking request deleted"})
}
