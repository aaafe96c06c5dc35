package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorloop/api/config"
	"github.com/mentorloop/api/config/db"
	redisconfig "github.com/mentorloop/api/config/redis"
	"github.com/mentorloop/api/logger"
	"github.com/mentorloop/api/middlewares/cors"
	"github.com/mentorloop/api/ratelimit"
	"github.com/mentorloop/api/routes"
	"github.com/mentorloop/api/utils/mail"
	"github.com/mentorloop/api/workers"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()

	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to run migrations: %v", err)
		os.Exit(1)
	}

	if err := mail.InitTemplates(embeddedEmailTemplates); err != nil {
		logger.ErrorLogger.Errorf("Failed to initialize email templates: %v", err)
		os.Exit(1)
	}
	logger.InfoLogger.Info("Email templates initialized.")

	rdb, err := redisconfig.GetRedisClient(ctx)
	if err != nil {
		logger.WarnLogger.Warnf("Redis unavailable, rate limiting uses in-memory counters only: %v", err)
		rdb = nil
	}
	defer redisconfig.CloseRedis()

	policy := ratelimit.UpstreamPolicy(config.GetEnv("RATE_LIMIT_ON_UPSTREAM_ERROR", "allow"))
	limiter, err := ratelimit.New(rdb, ratelimit.DefaultBudgets, policy)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build rate limiter: %v", err)
		os.Exit(1)
	}

	worker := workers.NewReminderWorker(db.DB, mail.NewSMTPMailer(), 5*time.Minute)
	worker.Start(ctx)
	defer worker.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRequestRoutes(r, limiter)
	routes.RegisterSessionRoutes(r, limiter)
	routes.RegisterReviewRoutes(r, limiter)
	routes.RegisterAdminRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from mentorloop api"})
	})

	srv := &http.Server{
		Addr:    ":" + config.GetEnv("PORT", "8081"),
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
}
