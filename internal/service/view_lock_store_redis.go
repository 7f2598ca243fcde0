package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kentbulteni/analytics-service/internal/observability"
)

// Check-and-lock as one script so concurrent requests for the same
// (session, route) pair serialize inside redis: at most one caller per
// window observes an expired lock.
var redisViewLockScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local locked_until = redis.call("GET", key)
if locked_until and tonumber(locked_until) > now_ms then
  return {0, tonumber(locked_until)}
end

local new_until = now_ms + window_ms
redis.call("SET", key, tostring(new_until))
redis.call("PEXPIRE", key, window_ms)
return {1, new_until}
`)

type RedisViewLockStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisViewLockStore(client redis.UniversalClient, prefix string) *RedisViewLockStore {
	if prefix == "" {
		prefix = "view_lock"
	}
	return &RedisViewLockStore{client: client, prefix: prefix}
}

func (s *RedisViewLockStore) key(sessionID, route string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, sessionID, route)
}

func (s *RedisViewLockStore) CheckAndLock(ctx context.Context, sessionID, route string, window time.Duration) (LockOutcome, error) {
	if s.client == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	raw, err := redisViewLockScript.Run(
		ctx,
		s.client,
		[]string{s.key(sessionID, route)},
		time.Now().UnixMilli(),
		window.Milliseconds(),
	).Result()
	if err != nil {
		observability.RecordViewLockOutcome(ctx, "redis", "error")
		return "", err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		observability.RecordViewLockOutcome(ctx, "redis", "error")
		return "", fmt.Errorf("unexpected redis script response type %T", raw)
	}
	allowed, ok := values[0].(int64)
	if !ok {
		observability.RecordViewLockOutcome(ctx, "redis", "error")
		return "", fmt.Errorf("unexpected redis script response element %T", values[0])
	}
	if allowed == 1 {
		observability.RecordViewLockOutcome(ctx, "redis", string(NewlyLocked))
		return NewlyLocked, nil
	}
	observability.RecordViewLockOutcome(ctx, "redis", string(AlreadyLocked))
	return AlreadyLocked, nil
}
