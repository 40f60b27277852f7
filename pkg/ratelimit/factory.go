package ratelimit

import (
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClientProvider is implemented by stores that can lend their Redis client.
type RedisClientProvider interface {
	GetClient() *redis.Client
}

// Factory builds limiters on one backing: Redis when the kv store is
// Redis-backed, in-memory otherwise.
type Factory struct {
	redis  *redis.Client
	logger Logger
}

// NewFactory borrows the Redis client of backing when it has one.
func NewFactory(backing any, logger Logger) *Factory {
	var client *redis.Client
	if provider, ok := backing.(RedisClientProvider); ok {
		client = provider.GetClient()
	}
	return NewFactoryWithClient(client, logger)
}

func NewFactoryWithClient(client *redis.Client, logger Logger) *Factory {
	return &Factory{redis: client, logger: logger}
}

func (f *Factory) Distributed() bool {
	return f != nil && f.redis != nil
}

func (f *Factory) PerMinute(scope string, requests int) RateLimiter {
	return f.New(scope, Limit{Requests: requests, Window: time.Minute})
}

func (f *Factory) New(scope string, limit Limit) RateLimiter {
	if !f.Distributed() {
		return NewMemoryLimiter(scope, limit)
	}
	return NewRedisLimiter(f.redis, scope, limit, f.logger)
}
