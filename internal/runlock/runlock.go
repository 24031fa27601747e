package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another sync pass is running")

// Release gives the lock back. It is safe to call after the lock expired.
type Release func(ctx context.Context) error

// Locker guards a sync pass so only one process mutates the workspace at a time.
type Locker interface {
	Acquire(ctx context.Context) (Release, error)
}

// NopLocker always succeeds; used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

// KeySyncLock is the Redis key of the workspace lock: runlock:{spreadsheet}.
const KeySyncLock = "runlock:%s"

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, workspace string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, key: fmt.Sprintf(KeySyncLock, workspace), ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context) (Release, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("releasing %s: %w", l.key, err)
		}
		return nil
	}, nil
}

// NewRedisClient follows the usual client settings for short-lived commands.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
