// Package ratelimit throttles HTTP clients. Limiters are scoped so that the
// global budget and per-route budgets never share counters, including when
// they share a Redis database with the kv store.
package ratelimit

import (
	"context"
	"time"
)

// KeyPrefix keeps limiter keys apart from roster and session keys.
const KeyPrefix = "telecheck:ratelimit:"

type Logger interface {
	Error(msg string, args ...interface{})
}

// Limit is a budget of Requests per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RetryAfter is the whole number of seconds a throttled client should wait.
func (l Limit) RetryAfter() int {
	seconds := int((l.Window + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

type RateLimiter interface {
	Limit() Limit
	// Allow consumes one request for key and reports whether it fits the budget.
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

func scopedKey(scope, key string) string {
	if key == "" {
		key = "anonymous"
	}
	if scope == "" {
		return KeyPrefix + key
	}
	return KeyPrefix + scope + ":" + key
}
