package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const dbPingTimeout = 5 * time.Second

// DBConfig tunes the pool of the SQL store. Zero values are filled from the
// DB_* environment variables.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// SSLMode applies when the connection is assembled from POSTGRES_* parts.
	SSLMode string
	// SQLitePath is opened when neither SQLITE_PATH nor postgres is configured.
	SQLitePath string
}

func (c *DBConfig) withDefaults() DBConfig {
	out := DBConfig{}
	if c != nil {
		out = *c
	}
	if out.MaxIdleConns <= 0 {
		out.MaxIdleConns = utils.GetEnvNonNegativeInt("DB_MAX_IDLE_CONNS", 5)
	}
	if out.MaxOpenConns <= 0 {
		out.MaxOpenConns = utils.GetEnvNonNegativeInt("DB_MAX_OPEN_CONNS", 20)
	}
	if out.ConnMaxLifetime <= 0 {
		out.ConnMaxLifetime = utils.GetEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	}
	if out.SSLMode == "" {
		out.SSLMode = "require"
	}
	return out
}

// NewDatabase opens the SQL store. SQLITE_PATH wins over postgres, which is
// configured by APP_DATABASE_URL or the POSTGRES_* parts.
func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	pool := cfg.withDefaults()
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	path := unquote(utils.GetEnvTrimmed("SQLITE_PATH"))
	if path == "" && !postgresConfigured() {
		path = pool.SQLitePath
	}

	if path != "" {
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			logger.Error("Failed to open sqlite database", "path", path, "error", err)
			return nil, fmt.Errorf("open sqlite %q: %w", path, err)
		}
		// One connection serialises writers; sqlite rejects concurrent ones.
		pool.MaxOpenConns, pool.MaxIdleConns = 1, 1
		return finishOpen(logger, db, pool, "sqlite", path)
	}

	dsn, target, err := postgresDSN(pool.SSLMode)
	if err != nil {
		logger.Error("Database is not configured", "error", err)
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		logger.Error("Failed to connect to database", "target", target, "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return finishOpen(logger, db, pool, "postgres", target)
}

func finishOpen(logger *log.Logger, db *gorm.DB, pool DBConfig, driver, target string) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s handle: %w", driver, err)
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Error("Database ping failed", "driver", driver, "target", target, "error", err)
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logger.Info("Database connected", "driver", driver, "target", target, "max_open_conns", pool.MaxOpenConns)
	return db, nil
}

func postgresConfigured() bool {
	return utils.GetEnvTrimmed("APP_DATABASE_URL") != "" || utils.GetEnvTrimmed("POSTGRES_HOST") != ""
}

// postgresDSN returns the DSN and a password-free description for logs.
func postgresDSN(defaultSSLMode string) (dsn, target string, err error) {
	if raw := unquote(utils.GetEnvTrimmed("APP_DATABASE_URL")); raw != "" {
		return raw, redactURL(raw), nil
	}

	parts := map[string]string{
		"POSTGRES_HOST":    unquote(utils.GetEnvTrimmed("POSTGRES_HOST")),
		"POSTGRES_PORT":    unquote(utils.GetEnvTrimmedOrDefault("POSTGRES_PORT", "5432")),
		"POSTGRES_USER":    unquote(utils.GetEnvTrimmed("POSTGRES_USER")),
		"POSTGRES_DB_NAME": unquote(utils.GetEnvTrimmed("POSTGRES_DB_NAME")),
	}

	var missing []string
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", "", fmt.Errorf("set SQLITE_PATH, APP_DATABASE_URL or %s", strings.Join(missing, ", "))
	}

	sslMode := unquote(utils.GetEnvTrimmedOrDefault("POSTGRES_SSLMODE", defaultSSLMode))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(parts["POSTGRES_USER"], unquote(utils.GetEnvTrimmed("POSTGRES_PASSWORD"))),
		Host:     net.JoinHostPort(parts["POSTGRES_HOST"], parts["POSTGRES_PORT"]),
		Path:     "/" + parts["POSTGRES_DB_NAME"],
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String(), u.Redacted(), nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unparsable database URL"
	}
	return u.Redacted()
}

// unquote strips one pair of matching quotes left behind by hand-written env files.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...any) error {
	if db == nil {
		return fmt.Errorf("auto-migrate: no database configured")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Auto-migrate failed", "error", err)
		return fmt.Errorf("auto-migrate: %w", err)
	}

	logger.Info("Auto-migrate completed", "models", len(models))
	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Warn("Closing database failed", "error", err)
		return
	}
	logger.Info("Database closed")
}
