package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mentorloop/api/logger"
)

// ErrUserIDNotFound means the request carried no authenticated identity.
var ErrUserIDNotFound = errors.New("authentication required: user ID not found")

// GetUserIDFromContext extracts the authenticated user ID set by the auth
// middleware. Returns ErrUserIDNotFound when no identity is present.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, ErrUserIDNotFound
	}

	userID, ok := v.(uuid.UUID)
	if !ok {
		logger.ErrorLogger.Errorf("user_id in context has unexpected type %T", v)
		return uuid.Nil, ErrUserIDNotFound
	}
	return userID, nil
}
