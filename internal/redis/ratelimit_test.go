package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, RateLimitConfig{IngestLimit: limit, IngestWindow: window})
}

func TestAllowIngestWithinLimit(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.AllowIngest(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3, result.Limit)
		assert.Equal(t, 2-i, result.Remaining)
	}
}

func TestAllowIngestOverLimit(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.AllowIngest(ctx, "10.0.0.2")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.AllowIngest(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestAllowIngestIsolatesIPs(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	first, err := limiter.AllowIngest(ctx, "10.0.0.3")
	require.NoError(t, err)
	require.True(t, first.Allowed)

	blocked, err := limiter.AllowIngest(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := limiter.AllowIngest(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestReset(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, err := limiter.AllowIngest(ctx, "10.0.0.5")
	require.NoError(t, err)

	require.NoError(t, limiter.Reset(ctx, "10.0.0.5"))

	result, err := limiter.AllowIngest(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
