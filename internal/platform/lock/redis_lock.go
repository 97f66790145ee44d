// Package lock implements the engine's optional advisory lock, a
// short-lived SETNX-based mutex used to shed contention before a database
// transaction opens.
package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements engine.AdvisoryLock with SETNX + TTL. Acquisition
// failure due to contention returns ok=false; connectivity failure returns
// a non-nil err so the caller can fall back to the row lock alone.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context), bool, error) {
	acquired, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}
	unlock := func(unlockCtx context.Context) {
		l.client.Del(unlockCtx, key)
	}
	return unlock, true, nil
}
