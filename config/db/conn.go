package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorloop/api/logger"
)

var DB *pgxpool.Pool

func Connect() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.ErrorLogger.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.ErrorLogger.Errorf("Unable to parse DATABASE_URL: %v", err)
		os.Exit(1)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Errorf("Database connection error: %v", err)
		os.Exit(1)
	}

	// Ping asynchronously so a cold database does not block startup.
	start := time.Now()
	go func() {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pingCancel()

		if err := pool.Ping(pingCtx); err != nil {
			logger.WarnLogger.Warnf("Database cold start or unreachable: %v", err)
		} else {
			logger.InfoLogger.Infof("Database ready (ping ok in %v)", time.Since(start))
		}
	}()

	DB = pool
	logger.InfoLogger.Info("Connected to PostgreSQL pool (async ping).")
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.InfoLogger.Info("Disconnected from PostgreSQL.")
	}
}
