package review_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/models/booking_models"
	"github.com/mentorloop/api/models/review_models"
	"github.com/mentorloop/api/utils"
)

// ReviewController handles session reviews.
type ReviewController struct {
	DB *pgxpool.Pool
}

func NewReviewController(db *pgxpool.Pool) *ReviewController {
	return &ReviewController{DB: db}
}

type createReviewBody struct {
	BookingID string  `json:"booking_id" binding:"required"`
	Rating    int     `json:"rating" binding:"required"`
	Comment   *string `json:"comment"`
}

// CreateReview stores one review per (booking, reviewer). Only
// participants of a completed session may review it.
func (rc *ReviewController) CreateReview(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	var body createReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	bookingID, err := uuid.Parse(body.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "booking_id must be a valid UUID"})
		return
	}

	ctx := c.Request.Context()

	booking, err := booking_models.GetBookingByID(ctx, rc.DB, bookingID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Session not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to load booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load session"})
		return
	}

	if _, err := booking.RoleOf(userID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You are not a participant of this session"})
		return
	}
	if booking.Status != booking_models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Only completed sessions can be reviewed"})
		return
	}

	review := &review_models.Review{
		BookingID:  bookingID,
		ReviewerID: userID,
		MentorID:   booking.MentorID,
		Rating:     body.Rating,
		Comment:    body.Comment,
	}

	if err := review_models.Create(ctx, rc.DB, review); err != nil {
		switch {
		case errors.Is(err, review_models.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, review_models.ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Failed to create review: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Review created", "data": review})
}

// ListMentorReviews returns a mentor's reviews, public.
func (rc *ReviewController) ListMentorReviews(c *gin.Context) {
	mentorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid mentor ID"})
		return
	}

	reviews, err := review_models.ListForMentor(c.Request.Context(), rc.DB, mentorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list reviews for mentor %s: %v", mentorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews})
}
