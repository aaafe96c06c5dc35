package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorloop/api/config/db"
	"github.com/mentorloop/api/controllers/booking_request_controller"
	"github.com/mentorloop/api/middlewares/auth"
	"github.com/mentorloop/api/ratelimit"
)

func RegisterBookingRequestRoutes(router *gin.Engine, limiter *ratelimit.Limiter) {
	controller := booking_request_controller.NewBookingRequestController(db.DB)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		requests := protected.Group("/booking-requests")
		{
			requests.POST("/", limiter.Middleware(ratelimit.ActionCreateBookingRequest), controller.CreateBookingRequest)
			requests.GET("/", controller.ListMyBookingRequests)
			requests.GET("/incoming", controller.ListIncomingRequests)
			requests.PATCH("/:id/respond", limiter.Middleware(ratelimit.ActionRespondRequest), controller.RespondToBookingRequest)
			requests.DELETE("/:id", controller.DeleteBookingRequest)
		}
	}
}
