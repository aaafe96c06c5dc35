package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorloop/api/config/db"
	"github.com/mentorloop/api/controllers/admin_controller"
	"github.com/mentorloop/api/middlewares/auth"
)

func RegisterAdminRoutes(router *gin.Engine) {
	controller := admin_controller.NewAdminController(db.DB)

	protected := router.Group("/admin")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/metrics", controller.GetMetrics)
	}
}
