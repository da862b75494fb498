package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "lockout:attempts:"
	lockKeyPrefix    = "lockout:until:"
)

// RedisAttemptTracker keeps lockout state in Redis so it survives restarts
// and is shared when several instances run behind one address.
type RedisAttemptTracker struct {
	client *redis.Client
	policy LockoutPolicy
}

// NewRedisAttemptTracker builds a Redis-backed tracker.
func NewRedisAttemptTracker(client *redis.Client, policy LockoutPolicy) *RedisAttemptTracker {
	return &RedisAttemptTracker{client: client, policy: policy}
}

func (t *RedisAttemptTracker) Locked(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := t.client.TTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (t *RedisAttemptTracker) RecordFailure(ctx context.Context, key string) (int, error) {
	attemptKey := attemptKeyPrefix + key

	count, err := t.client.Incr(ctx, attemptKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := t.client.Expire(ctx, attemptKey, t.policy.AttemptWindow).Err(); err != nil {
			return 0, err
		}
	}

	if count >= int64(t.policy.MaxAttempts) {
		if err := t.client.Set(ctx, lockKeyPrefix+key, 1, t.policy.LockDuration).Err(); err != nil {
			return 0, err
		}
		return 0, nil
	}

	remaining := t.policy.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (t *RedisAttemptTracker) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, attemptKeyPrefix+key, lockKeyPrefix+key).Err()
}
