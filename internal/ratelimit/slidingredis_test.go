package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T) (RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return RedisLimiter{Client: client, Prefix: "test:"}, mr
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	ctx := context.Background()
	window := 150 * time.Millisecond
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "ip:203.0.113.7", window, max)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, max-(i+1), remaining)
	}

	allowed, remaining, reset, err := limiter.Allow(ctx, "ip:203.0.113.7", window, max)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
	require.WithinDuration(t, time.Now().Add(window), reset, window)

	time.Sleep(window + 20*time.Millisecond)

	allowed, _, _, err = limiter.Allow(ctx, "ip:203.0.113.7", window, max)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestRedisLimiterRejectedRequestsDoNotCount(t *testing.T) {
	limiter, mr := newRedisLimiter(t)
	ctx := context.Background()

	allowed, _, _, err := limiter.Allow(ctx, "k", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	for i := 0; i < 3; i++ {
		allowed, _, _, err = limiter.Allow(ctx, "k", time.Minute, 1)
		require.NoError(t, err)
		require.False(t, allowed)
	}

	members, err := mr.ZMembers("test:k")
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestRedisLimiterDisabled(t *testing.T) {
	allowed, remaining, _, err := RedisLimiter{}.Allow(context.Background(), "k", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 5, remaining)
}
