package config

import (
	"context"
	"strings"
	"time"

	"github.com/akeren/telecheck/config/router"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/akeren/telecheck/pkg/kvstore"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/akeren/telecheck/pkg/utils"
	"gorm.io/gorm"
)

const tracingFlushTimeout = 5 * time.Second

// ApplicationConfig is everything a process wires once at startup. The CLI
// leaves RouterService nil.
type ApplicationConfig struct {
	DB              *gorm.DB
	Store           kvstore.Store
	StoreBackend    string
	Notifier        notify.Notifier
	RouterService   *router.RouterService
	Logger          *log.Logger
	Config          *AppConfig
	TracingShutdown func(context.Context) error

	closers []func() error
}

// AppConfig holds the tunables read from the environment.
type AppConfig struct {
	AppEnv string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	AdminEmail              string
	AdminEmailCaseSensitive bool
	// AllowedEmailDomains restricts registration; empty allows every domain.
	AllowedEmailDomains       []string
	AutoApproveAllowedDomains bool

	// MaxBulkNumbers of 0 disables the cap.
	MaxBulkNumbers int
	// CheckDelay paces streamed runs between numbers.
	CheckDelay time.Duration
}

func NewAppConfig() *AppConfig {
	cfg := &AppConfig{
		AppEnv:            GetAppEnv(),
		RateLimitRequests: positiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   positiveDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow),
		RequestTimeout:    positiveDuration("REQUEST_TIMEOUT", 30*time.Second),

		AdminEmail:                utils.GetEnvTrimmedOrDefault("TELECHECK_ADMIN_EMAIL", constants.DefaultAdminEmail),
		AdminEmailCaseSensitive:   utils.GetEnvBool("TELECHECK_ADMIN_CASE_SENSITIVE", false),
		AutoApproveAllowedDomains: utils.GetEnvBool("TELECHECK_AUTO_APPROVE_ALLOWED", false),

		MaxBulkNumbers: utils.GetEnvNonNegativeInt("TELECHECK_MAX_BULK_NUMBERS", constants.DefaultMaxBulkNumbers),
		CheckDelay:     utils.GetEnvDuration("TELECHECK_CHECK_DELAY", constants.DefaultCheckDelay),
	}

	for _, d := range utils.GetEnvList("TELECHECK_ALLOWED_EMAIL_DOMAINS") {
		cfg.AllowedEmailDomains = append(cfg.AllowedEmailDomains, strings.ToLower(strings.TrimPrefix(d, "@")))
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := utils.GetEnvNonNegativeInt(key, def); v > 0 {
		return v
	}
	return def
}

func positiveDuration(key string, def time.Duration) time.Duration {
	if v := utils.GetEnvDuration(key, def); v > 0 {
		return v
	}
	return def
}

// DevControlsEnabled reports whether the reset and force endpoints may be mounted.
func (c *AppConfig) DevControlsEnabled() bool {
	return IsDevEnvironment(c.AppEnv)
}

func (ac *ApplicationConfig) addCloser(fn func() error) {
	ac.closers = append(ac.closers, fn)
}

// Cleanup releases resources in reverse order of acquisition: spans are
// flushed first, the database goes last.
func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Warn("Flushing traces failed", "error", err)
		}
		cancel()
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	for i := len(ac.closers) - 1; i >= 0; i-- {
		if err := ac.closers[i](); err != nil {
			ac.Logger.Warn("Releasing resource failed", "error", err)
		}
	}
	ac.closers = nil

	if ac.Store != nil {
		_ = CloseStore(ac.Store, ac.Logger)
	}
	CloseDatabase(ac.DB, ac.Logger)

	ac.Logger.Info("Application cleanup completed")
}

// LoadApplicationConfiguration is LoadStoreConfiguration plus tracing and
// the HTTP router.
func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	app, err := LoadStoreConfiguration(logger, autoMigrate)
	if err != nil {
		return nil, err
	}

	if app.TracingShutdown, err = SetupTracing(logger); err != nil {
		app.Cleanup()
		return nil, err
	}

	cfg := app.Config
	app.RouterService = router.CreateRouterService(logger, app.Store, &router.RouterConfig{
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RequestTimeout:    cfg.RequestTimeout,
	})

	logger.Info("Application configuration loaded",
		"app_env", cfg.AppEnv,
		"store", app.StoreBackend,
		"admin_email", cfg.AdminEmail,
		"max_bulk_numbers", cfg.MaxBulkNumbers,
		"dev_controls", cfg.DevControlsEnabled(),
	)
	return app, nil
}

// StoreOptions adjust LoadStoreConfigurationWithOptions.
type StoreOptions struct {
	AutoMigrate bool
	// LocalSQLitePath replaces the in-memory default with the sql backend on
	// this file, so state outlives a single process. In dev environments the
	// kv_entries table is created on the spot.
	LocalSQLitePath string
}

// LoadStoreConfiguration wires the store, its database and the notifier.
func LoadStoreConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	return LoadStoreConfigurationWithOptions(logger, StoreOptions{AutoMigrate: autoMigrate})
}

func LoadStoreConfigurationWithOptions(logger *log.Logger, opts StoreOptions) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	autoMigrate := opts.AutoMigrate
	if autoMigrate {
		if err := ValidateAutoMigrateAllowed(GetAppEnv()); err != nil {
			return nil, err
		}
	}

	app := &ApplicationConfig{Logger: logger, Config: NewAppConfig()}
	storeCfg := NewStoreConfig()
	dbCfg := &DBConfig{}

	local := opts.LocalSQLitePath != "" && storeCfg.PreferSQL()
	if local {
		dbCfg.SQLitePath = opts.LocalSQLitePath
		autoMigrate = autoMigrate || IsDevEnvironment(GetAppEnv())
		logger.Debug("No store configured, using the SQL store", "default_sqlite_path", opts.LocalSQLitePath)
	}

	if storeCfg.Backend == kvstore.BackendSQL {
		db, err := NewDatabase(logger, dbCfg)
		if err != nil {
			return nil, err
		}
		app.DB = db

		if autoMigrate {
			if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
				app.Cleanup()
				return nil, err
			}
		} else if local && !db.Migrator().HasTable(&models.KVEntry{}) {
			app.Cleanup()
			return nil, ErrStoreNotMigrated
		}
	}

	app.Store = storeCfg.NewStoreWithFallback(logger, app.DB)
	app.StoreBackend = storeCfg.Backend

	notifier, closeNotifier := NewNotifier(logger)
	app.Notifier = notifier
	if closeNotifier != nil {
		app.addCloser(closeNotifier)
	}

	return app, nil
}
