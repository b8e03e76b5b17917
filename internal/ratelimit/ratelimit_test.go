package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLimiter struct {
	allowed  int
	calls    int
	lastKey  string
	lastRate redis_rate.Limit
	err      error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	f.calls++
	f.lastKey = key
	f.lastRate = limit
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.allowed {
		return &redis_rate.Result{Limit: limit, Allowed: 1, Remaining: f.allowed - f.calls}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 1500 * time.Millisecond}, nil
}

func serve(t *testing.T, limiter RequestRateLimiter) (*echo.Echo, *int) {
	t.Helper()

	hits := 0
	e := echo.New()
	e.POST("/api/auth/login", func(c echo.Context) error {
		hits++
		return c.NoContent(http.StatusOK)
	}, PerClient(limiter, "login", 2))
	return e, &hits
}

func TestPerClient_BlocksAfterLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: 2}
	e, hits := serve(t, limiter)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		last = httptest.NewRecorder()
		e.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 2, *hits)
	assert.Equal(t, "2", last.Header().Get("Retry-After"))
	assert.Equal(t, "login:10.0.0.7", limiter.lastKey)
	assert.Equal(t, redis_rate.PerMinute(2), limiter.lastRate)
}

func TestPerClient_FailsOpen(t *testing.T) {
	e, hits := serve(t, &fakeLimiter{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *hits)
}
