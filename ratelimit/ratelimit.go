package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/mentorloop/api/logger"
)

// Action identifies a throttled operation.
type Action string

const (
	ActionCreateBooking        Action = "create_booking"
	ActionCreateBookingRequest Action = "create_booking_request"
	ActionRespondRequest       Action = "respond_request"
	ActionSendMessage          Action = "send_message"
	ActionCreateReview         Action = "create_review"
)

// DefaultBudgets holds the per-action request budgets as rate strings
// in the "limit-period" format, e.g. "5-1h".
var DefaultBudgets = map[Action]string{
	ActionCreateBooking:        "5-1h",
	ActionCreateBookingRequest: "10-1h",
	ActionRespondRequest:       "20-1h",
	ActionSendMessage:          "30-1h",
	ActionCreateReview:         "3-1h",
}

// UpstreamPolicy decides what happens when the Redis-backed check itself
// fails. Allow keeps legitimate traffic flowing during backend hiccups.
type UpstreamPolicy string

const (
	PolicyAllow UpstreamPolicy = "allow"
	PolicyDeny  UpstreamPolicy = "deny"
)

// Result mirrors what callers need to render a throttling response.
type Result struct {
	Allowed           bool  `json:"allowed"`
	CurrentCount      int64 `json:"current_count"`
	MaxRequests       int64 `json:"max_requests"`
	TimeWindowMinutes int64 `json:"time_window_minutes"`
	RetryAfterSeconds int64 `json:"retry_after_seconds"`
}

// Limiter throttles actions per identity. The primary layer counts in
// Redis; a per-instance in-memory layer takes over when Redis is
// unreachable and the policy is Allow. Instances are independent, so
// tests and sessions get their own counters.
type Limiter struct {
	primary         map[Action]*limiter.Limiter
	fallback        map[Action]*limiter.Limiter
	rates           map[Action]limiter.Rate
	onUpstreamError UpstreamPolicy
}

// ParseCustomRate parses rate strings like "10-2m", "5-1h" or "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	var period time.Duration

	switch {
	case strings.HasSuffix(durationStr, "s"):
		seconds, err := strconv.Atoi(strings.TrimSuffix(durationStr, "s"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid seconds duration: %v", err)
		}
		period = time.Duration(seconds) * time.Second

	case strings.HasSuffix(durationStr, "m"):
		minutes, err := strconv.Atoi(strings.TrimSuffix(durationStr, "m"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid minutes duration: %v", err)
		}
		period = time.Duration(minutes) * time.Minute

	case strings.HasSuffix(durationStr, "h"):
		hours, err := strconv.Atoi(strings.TrimSuffix(durationStr, "h"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid hours duration: %v", err)
		}
		period = time.Duration(hours) * time.Hour

	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{
		Period: period,
		Limit:  int64(limit),
	}, nil
}

// New builds a Limiter from per-action budgets. rdb may be nil, in which
// case only the in-memory layer counts.
func New(rdb *goredis.Client, budgets map[Action]string, policy UpstreamPolicy) (*Limiter, error) {
	if budgets == nil {
		budgets = DefaultBudgets
	}
	if policy == "" {
		policy = PolicyAllow
	}

	l := &Limiter{
		primary:         make(map[Action]*limiter.Limiter),
		fallback:        make(map[Action]*limiter.Limiter),
		rates:           make(map[Action]limiter.Rate),
		onUpstreamError: policy,
	}

	for action, rateStr := range budgets {
		rate, err := ParseCustomRate(rateStr)
		if err != nil {
			return nil, fmt.Errorf("budget for %s: %w", action, err)
		}
		l.rates[action] = rate

		if rdb != nil {
			store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
				Prefix:          fmt.Sprintf("rate_limit:%s", action),
				MaxRetry:        3,
				CleanUpInterval: rate.Period,
			})
			if err != nil {
				return nil, fmt.Errorf("redis store for %s: %w", action, err)
			}
			l.primary[action] = limiter.New(store, rate)
		}

		memStore := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          fmt.Sprintf("rate_limit:%s", action),
			CleanUpInterval: rate.Period,
		})
		l.fallback[action] = limiter.New(memStore, rate)
	}

	return l, nil
}

// Check counts one attempt for (key, action) and reports whether it is
// within budget. Unknown actions are allowed.
func (l *Limiter) Check(ctx context.Context, key string, action Action) Result {
	rate, ok := l.rates[action]
	if !ok {
		logger.WarnLogger.Warnf("Rate limit check for unknown action %q, allowing", action)
		return Result{Allowed: true}
	}

	if inst, ok := l.primary[action]; ok {
		lctx, err := inst.Get(ctx, key)
		if err == nil {
			return resultFrom(lctx, rate)
		}
		logger.ErrorLogger.Errorf("Rate limit store error for action %s: %v", action, err)

		if l.onUpstreamError == PolicyDeny {
			return Result{
				Allowed:           false,
				MaxRequests:       rate.Limit,
				TimeWindowMinutes: int64(rate.Period.Minutes()),
			}
		}
		// Fall through to the advisory in-memory layer.
	}

	lctx, err := l.fallback[action].Get(ctx, key)
	if err != nil {
		logger.ErrorLogger.Errorf("In-memory rate limit error for action %s: %v", action, err)
		return Result{Allowed: true, MaxRequests: rate.Limit, TimeWindowMinutes: int64(rate.Period.Minutes())}
	}
	return resultFrom(lctx, rate)
}

func resultFrom(lctx limiter.Context, rate limiter.Rate) Result {
	retryAfter := lctx.Reset - time.Now().Unix()
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Result{
		Allowed:           !lctx.Reached,
		CurrentCount:      lctx.Limit - lctx.Remaining,
		MaxRequests:       lctx.Limit,
		TimeWindowMinutes: int64(rate.Period.Minutes()),
		RetryAfterSeconds: retryAfter,
	}
}

// Middleware throttles a route by the authenticated user, falling back to
// the client IP for anonymous traffic.
func (l *Limiter) Middleware(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if v, exists := c.Get("user_id"); exists {
			if id, ok := v.(uuid.UUID); ok {
				key = id.String()
			}
		}

		res := l.Check(c.Request.Context(), key, action)
		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(res.RetryAfterSeconds, 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":             false,
				"error":               "Too many requests, please try again later",
				"retry_after_seconds": res.RetryAfterSeconds,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
