package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mentorloop/api/logger"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.WarnLogger.Warn("JWT_SECRET environment variable not set")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

// AuthMiddleware validates the Bearer token and stores the caller's
// user ID in the gin context under "user_id" as a uuid.UUID.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "No authorization token"})
			c.Abort()
			return
		}

		var tokenString string
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
			tokenString = authHeader[7:]
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
			c.Abort()
			return
		}

		subject, _ := claims["user_id"].(string)
		if subject == "" {
			subject, _ = claims["sub"].(string)
		}
		if subject == "" {
			logger.ErrorLogger.Error("No user identifier found in token")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(subject)
		if err != nil {
			logger.ErrorLogger.Errorf("Token subject %q is not a UUID: %v", subject, err)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
