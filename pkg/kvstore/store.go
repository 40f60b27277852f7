// Package kvstore is the string-keyed persisted store the access roster, session
// identities and bulk-check results live in. Backends: in-memory, Redis and SQL.
package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/telecheck/pkg/constants"
)

type Store interface {
	// Get returns ("", nil) when a key is not found or has expired.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

var (
	ErrEmptyKey       = errors.New("kvstore: key must not be empty")
	ErrStoreClosed    = errors.New("kvstore: store is closed")
	ErrUnknownBackend = errors.New("kvstore: unknown backend")
)

// SessionKey builds telecheck:session:<id>:<name>.
func SessionKey(sessionID, name string) string {
	return constants.StoreKeyPrefix + "session:" + sessionID + ":" + name
}
