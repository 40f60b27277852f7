package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepEvery = 1024

// MemoryLimiter is a token bucket per key. Buckets idle for two windows are
// swept every sweepEvery calls.
type MemoryLimiter struct {
	scope string
	limit Limit

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(scope string, limit Limit) *MemoryLimiter {
	return &MemoryLimiter{
		scope:   scope,
		limit:   limit,
		buckets: make(map[string]*bucket),
	}
}

func (m *MemoryLimiter) Limit() Limit {
	return m.limit
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	key = scopedKey(m.scope, key)
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		perSecond := rate.Limit(float64(m.limit.Requests) / m.limit.Window.Seconds())
		b = &bucket{tokens: rate.NewLimiter(perSecond, m.limit.Requests)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	m.calls++
	if m.calls%sweepEvery == 0 {
		m.sweep(now)
	}

	return b.tokens.AllowN(now, 1), nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	cutoff := now.Add(-2 * m.limit.Window)
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

func (m *MemoryLimiter) Close() error {
	return nil
}
