package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// slidingWindow trims the sorted set to the window, then admits the request
// only while the count is below the limit.
var slidingWindow = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window * 2)
return 1
`)

// RedisLimiter is a sliding window shared by every replica. The client belongs
// to the kv store and is not closed here.
type RedisLimiter struct {
	client *redis.Client
	scope  string
	limit  Limit
	logger Logger
}

func NewRedisLimiter(client *redis.Client, scope string, limit Limit, logger Logger) *RedisLimiter {
	return &RedisLimiter{client: client, scope: scope, limit: limit, logger: logger}
}

func (r *RedisLimiter) Limit() Limit {
	return r.limit
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := scopedKey(r.scope, key)
	now := time.Now().UnixMilli()

	admitted, err := slidingWindow.Run(ctx, r.client, []string{fullKey},
		now, r.limit.Window.Milliseconds(), r.limit.Requests, uuid.NewString(),
	).Int()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", fullKey, "error", err)
		}
		return false, fmt.Errorf("redis rate limiter: %w", err)
	}

	return admitted == 1, nil
}

func (r *RedisLimiter) Close() error {
	return nil
}
