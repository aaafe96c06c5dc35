package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorloop/api/config/db"
	"github.com/mentorloop/api/controllers/session_controller"
	"github.com/mentorloop/api/middlewares/auth"
	"github.com/mentorloop/api/ratelimit"
)

func RegisterSessionRoutes(router *gin.Engine, limiter *ratelimit.Limiter) {
	controller := session_controller.NewSessionController(db.DB)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/book-session", limiter.Middleware(ratelimit.ActionCreateBooking), controller.BookSession)
		protected.POST("/manage-session", controller.ManageSession)
		protected.GET("/sessions", controller.ListMySessions)
	}
}
