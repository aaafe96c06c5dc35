package admin_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/models/admin_models"
	"github.com/mentorloop/api/utils"
)

// AdminController serves platform metrics to admin users.
type AdminController struct {
	DB *pgxpool.Pool
}

func NewAdminController(db *pgxpool.Pool) *AdminController {
	return &AdminController{DB: db}
}

// GetMetrics returns aggregate platform counts, revenue and the top
// mentors. Requires an admin role record.
func (ac *AdminController) GetMetrics(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()

	isAdmin, err := admin_models.IsAdmin(ctx, ac.DB, userID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to check admin role for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to verify permissions"})
		return
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin role required"})
		return
	}

	metrics, err := admin_models.GetMetrics(ctx, ac.DB)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to aggregate metrics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": metrics})
}
