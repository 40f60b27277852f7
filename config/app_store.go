package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/utils"
	"gorm.io/gorm"
)

type StoreConfig struct {
	Backend       string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	defaulted bool
}

// NewStoreConfig reads STORE_BACKEND. When it is unset, a configured REDIS_HOST
// selects Redis, otherwise the in-memory store is used.
func NewStoreConfig() *StoreConfig {
	cfg := &StoreConfig{
		Backend:       strings.ToLower(utils.GetEnvTrimmed("STORE_BACKEND")),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     utils.GetEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.Backend == "" {
		if cfg.RedisHost != "" {
			cfg.Backend = kvstore.BackendRedis
		} else {
			cfg.Backend = kvstore.BackendMemory
			cfg.defaulted = true
		}
	}

	return cfg
}

// PreferSQL moves a store that landed on the in-memory default onto the sql
// backend. An explicit STORE_BACKEND or REDIS_HOST is left alone.
func (sc *StoreConfig) PreferSQL() bool {
	if !sc.defaulted {
		return false
	}
	sc.Backend = kvstore.BackendSQL
	sc.defaulted = false
	return true
}

func (sc *StoreConfig) NewStore(logger *log.Logger, db *gorm.DB) (kvstore.Store, error) {
	switch sc.Backend {
	case kvstore.BackendMemory:
		logger.Info("Using in-memory store; state is lost on restart")
		return kvstore.NewMemoryStore(), nil

	case kvstore.BackendRedis:
		if sc.RedisHost == "" {
			return nil, ErrStoreNotConfigured
		}

		store, err := kvstore.NewRedisStore(&kvstore.RedisConfig{
			Host:     sc.RedisHost,
			Port:     sc.RedisPort,
			Password: sc.RedisPassword,
			DB:       0,
		})
		if err != nil {
			logger.Error("Failed to create store (Redis)", "error", err)
			return nil, err
		}

		logger.Info("Store (Redis) connected successfully")
		return store, nil

	case kvstore.BackendSQL:
		if db == nil {
			return nil, ErrStoreNotConfigured
		}

		logger.Info("Using SQL store (kv_entries)")
		return kvstore.NewSQLStore(db), nil

	default:
		return nil, fmt.Errorf("%w: %q", kvstore.ErrUnknownBackend, sc.Backend)
	}
}

// NewStoreWithFallback never fails: a broken backend is logged and replaced by
// the in-memory store so the service still starts. Backend reflects the store
// actually in use afterwards.
func (sc *StoreConfig) NewStoreWithFallback(logger *log.Logger, db *gorm.DB) kvstore.Store {
	store, err := sc.NewStore(logger, db)
	if err != nil {
		logger.Error("Falling back to in-memory store", "backend", sc.Backend, "error", err)
		sc.Backend = kvstore.BackendMemory
		return kvstore.NewMemoryStore()
	}

	return store
}

func CloseStore(store kvstore.Store, logger *log.Logger) error {
	if store == nil {
		logger.Info("No store provided; skipping store close")
		return nil
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close store", "error", err)
		return err
	}

	logger.Info("Store connection closed")
	return nil
}

var (
	ErrStoreNotConfigured = &StoreError{Message: "store backend is not configured"}
	ErrStoreNotMigrated   = &StoreError{Message: "kv_entries table is missing; run `telecheck migrate` first"}
)

type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
