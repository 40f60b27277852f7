// Package migrations applies the SQL schema of the kv_entries store with
// golang-migrate. The schema ships embedded in the binary; a directory can
// override it for hand-written migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var schema embed.FS

const DefaultMigrationsTable = "telecheck_schema_migrations"

var ErrNilDatabase = errors.New("migrations: database is nil")

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type Config struct {
	// Dir replaces the embedded schema when set.
	Dir             string
	MigrationsTable string
	Logger          Logger
}

// engine is the subset of *migrate.Migrate the runner drives.
type engine interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

// origin is where migration files come from: a file:// URL or an open driver.
type origin struct {
	url    string
	driver source.Driver
	label  string
}

type openFunc func(db *sql.DB, table string, from origin) (engine, error)

func openPostgres(db *sql.DB, table string, from origin) (engine, error) {
	target, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	if err != nil {
		return nil, fmt.Errorf("postgres driver: %w", err)
	}
	if from.driver != nil {
		return migrate.NewWithInstance("iofs", from.driver, "postgres", target)
	}
	return migrate.NewWithDatabaseInstance(from.url, "postgres", target)
}

type Runner struct {
	db     *sql.DB
	config Config
	open   openFunc
}

func NewRunner(db *sql.DB, config Config) *Runner {
	if strings.TrimSpace(config.MigrationsTable) == "" {
		config.MigrationsTable = DefaultMigrationsTable
	}
	return &Runner{db: db, config: config, open: openPostgres}
}

// Up applies every pending migration. Nothing to apply is not an error.
func Up(ctx context.Context, db *sql.DB, config Config) error {
	return NewRunner(db, config).Up(ctx)
}

func (r *Runner) Up(ctx context.Context) error {
	return r.run(ctx, "up", func(e engine) error {
		err := e.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			r.info("Schema already up to date")
			return nil
		}
		return err
	})
}

// Rollback reverts the given number of applied migrations.
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrations: rollback needs a positive step count, got %d", steps)
	}
	return r.run(ctx, "rollback", func(e engine) error {
		return e.Steps(-steps)
	})
}

// Version reports the applied schema version. A database that was never
// migrated reports version 0.
func (r *Runner) Version(ctx context.Context) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := r.run(ctx, "version", func(e engine) error {
		var err error
		version, dirty, err = e.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

// run opens an engine, executes op and closes it. golang-migrate takes no
// context, so cancellation closes the engine underneath the running op.
func (r *Runner) run(ctx context.Context, name string, op func(engine) error) error {
	if r.db == nil {
		return ErrNilDatabase
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from, err := resolveOrigin(r.config.Dir)
	if err != nil {
		return err
	}

	e, err := r.open(r.db, r.config.MigrationsTable, from)
	if err != nil {
		return fmt.Errorf("migrations: open: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			srcErr, dbErr := e.Close()
			if srcErr != nil {
				r.warn("Closing migration source failed", "error", srcErr)
			}
			if dbErr != nil {
				r.warn("Closing migration database failed", "error", dbErr)
			}
		})
	}
	defer release()

	r.info("Running migrations", "op", name, "source", from.label, "table", r.config.MigrationsTable)

	done := make(chan error, 1)
	go func() { done <- op(e) }()

	select {
	case <-ctx.Done():
		release()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("migrations: %s: %w", name, err)
		}
	}

	r.info("Migrations finished", "op", name)
	return nil
}

func (r *Runner) info(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Info(msg, args...)
	}
}

func (r *Runner) warn(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Warn(msg, args...)
	}
}

func resolveOrigin(dir string) (origin, error) {
	if strings.TrimSpace(dir) == "" {
		driver, err := iofs.New(schema, "sql")
		if err != nil {
			return origin{}, fmt.Errorf("migrations: embedded schema: %w", err)
		}
		return origin{driver: driver, label: "embedded"}, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return origin{}, fmt.Errorf("migrations: resolve %q: %w", dir, err)
	}

	// url.URL escapes spaces and other reserved characters in the path.
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return origin{url: u.String(), label: abs}, nil
}
