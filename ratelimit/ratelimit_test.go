package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorloop/api/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("LOG_FILE", filepath.Join(os.TempDir(), "mentorloop-test.log"))
	logger.InitLoggers()
	os.Exit(m.Run())
}

func TestParseCustomRate(t *testing.T) {
	t.Run("Hours", func(t *testing.T) {
		rate, err := ParseCustomRate("5-1h")
		require.NoError(t, err)
		assert.Equal(t, int64(5), rate.Limit)
		assert.Equal(t, time.Hour, rate.Period)
	})

	t.Run("Minutes", func(t *testing.T) {
		rate, err := ParseCustomRate("30-20m")
		require.NoError(t, err)
		assert.Equal(t, int64(30), rate.Limit)
		assert.Equal(t, 20*time.Minute, rate.Period)
	})

	t.Run("Seconds", func(t *testing.T) {
		rate, err := ParseCustomRate("2-10s")
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, rate.Period)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseCustomRate("nope")
		assert.Error(t, err)
		_, err = ParseCustomRate("five-1h")
		assert.Error(t, err)
		_, err = ParseCustomRate("5-1d")
		assert.Error(t, err)
	})
}

func TestCheckBudgetExhaustion(t *testing.T) {
	const action = Action("test_action")

	l, err := New(nil, map[Action]string{action: "3-1h"}, PolicyAllow)
	require.NoError(t, err)

	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res := l.Check(ctx, "user-a", action)
		assert.True(t, res.Allowed, "call %d should be allowed", i)
		assert.Equal(t, int64(i), res.CurrentCount)
		assert.Equal(t, int64(3), res.MaxRequests)
		assert.Equal(t, int64(60), res.TimeWindowMinutes)
	}

	res := l.Check(ctx, "user-a", action)
	assert.False(t, res.Allowed, "4th call within the window must be rejected")
	assert.Greater(t, res.RetryAfterSeconds, int64(0))

	// Another identity has its own counter.
	res = l.Check(ctx, "user-b", action)
	assert.True(t, res.Allowed)
}

func TestCheckWindowReset(t *testing.T) {
	const action = Action("burst")

	l, err := New(nil, map[Action]string{action: "2-1s"}, PolicyAllow)
	require.NoError(t, err)

	ctx := context.Background()

	assert.True(t, l.Check(ctx, "u", action).Allowed)
	assert.True(t, l.Check(ctx, "u", action).Allowed)
	assert.False(t, l.Check(ctx, "u", action).Allowed)

	time.Sleep(1100 * time.Millisecond)

	res := l.Check(ctx, "u", action)
	assert.True(t, res.Allowed, "counter must reset after the window elapses")
	assert.Equal(t, int64(1), res.CurrentCount)
}

func TestCheckUnknownActionAllowed(t *testing.T) {
	l, err := New(nil, map[Action]string{ActionCreateReview: "3-1h"}, PolicyAllow)
	require.NoError(t, err)

	res := l.Check(context.Background(), "u", Action("never_configured"))
	assert.True(t, res.Allowed)
}

func TestLimiterInstancesAreIndependent(t *testing.T) {
	const action = Action("test_action")
	budgets := map[Action]string{action: "1-1h"}
	ctx := context.Background()

	a, err := New(nil, budgets, PolicyAllow)
	require.NoError(t, err)
	b, err := New(nil, budgets, PolicyAllow)
	require.NoError(t, err)

	assert.True(t, a.Check(ctx, "u", action).Allowed)
	assert.False(t, a.Check(ctx, "u", action).Allowed)

	// A fresh instance carries no state from the first one.
	assert.True(t, b.Check(ctx, "u", action).Allowed)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const action = Action("test_action")
	l, err := New(nil, map[Action]string{action: "2-1h"}, PolicyAllow)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/limited", l.Middleware(action), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	call := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/limited", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call().Code)
	assert.Equal(t, http.StatusOK, call().Code)

	w := call()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"success":false`)
}
