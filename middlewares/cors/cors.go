package cors

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CorsMiddleware allows any origin. The API is consumed by browser clients
// from several frontends, so the policy is deliberately wide open.
func CorsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}
	return cors.New(cfg)
}
