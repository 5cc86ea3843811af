package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllow(t *testing.T) {
	lim := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := lim.Allow(ctx, "ip:1", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, 3-(i+1), remaining)
	}

	allowed, remaining, reset, err := lim.Allow(ctx, "ip:1", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
	require.True(t, reset.After(time.Now()))

	allowed, _, _, err = lim.Allow(ctx, "ip:2", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMemoryLimiterDisabled(t *testing.T) {
	allowed, _, _, err := NewMemoryLimiter().Allow(context.Background(), "k", time.Minute, 0)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMiddlewareWithMemoryLimiter(t *testing.T) {
	handler := Handler{
		Limiter: NewMemoryLimiter(),
		Config:  Config{Key: ByClientIP, Window: time.Minute, Max: 1},
	}
	next := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	req.RemoteAddr = "198.51.100.9:4000"

	first := httptest.NewRecorder()
	next.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	next.ServeHTTP(second, req)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
	require.Contains(t, second.Body.String(), "RATE_LIMITED")
}
