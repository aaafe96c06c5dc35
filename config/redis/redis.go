package redis

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mentorloop/api/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedisClient returns a singleton Redis client.
func GetRedisClient(ctx context.Context) (*redis.Client, error) {
	redisOnce.Do(func() {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			redisClient = nil
			return
		}

		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid REDIS_URL: %v", err)
			redisClient = nil
			return
		}

		redisClient = redis.NewClient(opt)

		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.ErrorLogger.Errorf("Failed to connect to Redis: %v", err)
			redisClient = nil
			return
		}

		logger.InfoLogger.Info("Connected to Redis")
	})

	if redisClient == nil {
		return nil, fmt.Errorf("redis client not initialized; check REDIS_URL and connectivity")
	}
	return redisClient, nil
}

// CloseRedis closes the Redis connection.
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorLogger.Errorf("Error closing Redis connection: %v", err)
		}
		logger.InfoLogger.Info("Redis connection closed")
	}
}
