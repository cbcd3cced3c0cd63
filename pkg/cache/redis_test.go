package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "workforce:grpc:tdls:r1", (&Cache{prefix: "workforce"}).key("grpc:tdls:r1"))
	assert.Equal(t, "grpc:tdls:r1", (&Cache{}).key("grpc:tdls:r1"))
}

func TestNewFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, WithAddress("127.0.0.1:1"))
	assert.Error(t, err)
}

func TestCacheIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := New(ctx, WithAddress(addr), WithPrefix("workforce-test"))
	require.NoError(t, err)
	defer c.Close()

	type view struct {
		RunID string `json:"run_id"`
	}

	var got view
	err = c.Get(ctx, "grpc:missing", &got)
	assert.True(t, errors.Is(err, redis.Nil))

	require.NoError(t, c.Set(ctx, "grpc:dashboard_stats:r1:30", view{RunID: "r1"}, time.Minute))
	require.NoError(t, c.Set(ctx, "other:r1", view{RunID: "r1"}, time.Minute))
	require.NoError(t, c.Get(ctx, "grpc:dashboard_stats:r1:30", &got))
	assert.Equal(t, "r1", got.RunID)

	removed, err := c.Invalidate(ctx, "grpc:")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	assert.ErrorIs(t, c.Get(ctx, "grpc:dashboard_stats:r1:30", &got), redis.Nil)
	require.NoError(t, c.Get(ctx, "other:r1", &got))
	_, _ = c.Invalidate(ctx, "other:")
}
