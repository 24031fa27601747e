package runlock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background())
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func redisLocker(t *testing.T) *RedisLocker {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := NewRedisClient(addr)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewRedisLocker(rdb, "test-"+uuid.NewString(), time.Minute)
}

func TestRedisLockerIsExclusive(t *testing.T) {
	l := redisLocker(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))
	again, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.NoError(t, again(ctx))
}

func TestRedisReleaseDoesNotDropAnotherHoldersLock(t *testing.T) {
	l := redisLocker(t)
	ctx := context.Background()

	stale, err := l.Acquire(ctx)
	require.NoError(t, err)
	// simulate expiry and takeover by another process
	require.NoError(t, l.rdb.Set(ctx, l.key, "someone-else", time.Minute).Err())

	require.NoError(t, stale(ctx))
	held, err := l.rdb.Get(ctx, l.key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", held)
	l.rdb.Del(ctx, l.key)
}
