package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorloop/api/config/db"
	"github.com/mentorloop/api/controllers/review_controller"
	"github.com/mentorloop/api/middlewares/auth"
	"github.com/mentorloop/api/ratelimit"
)

func RegisterReviewRoutes(router *gin.Engine, limiter *ratelimit.Limiter) {
	controller := review_controller.NewReviewController(db.DB)

	router.GET("/mentors/:id/reviews", controller.ListMentorReviews)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/reviews", limiter.Middleware(ratelimit.ActionCreateReview), controller.CreateReview)
	}
}
