package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/telecheck/config"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/migrations"
	"github.com/akeren/telecheck/pkg/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const migrateTimeout = 5 * time.Minute

func migrateCmd(logger *log.Logger) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations for the SQL store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd.Context(), logger, dir, func(ctx context.Context, db *gorm.DB, runner *migrations.Runner) error {
				// golang-migrate is wired for postgres only; sqlite files are created by gorm.
				if runner == nil {
					if err := config.AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
						return err
					}
					logger.Info("SQLite schema migrated")
					return nil
				}
				return runner.Up(ctx)
			})
		},
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", utils.GetEnvTrimmed("MIGRATIONS_DIR"), "Migrations directory (embedded schema when empty)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd.Context(), logger, dir, func(ctx context.Context, _ *gorm.DB, runner *migrations.Runner) error {
					if runner == nil {
						return fmt.Errorf("schema versions are only tracked for postgres")
					}
					version, dirty, err := runner.Version(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
		rollbackCmd(logger, &dir),
	)

	return cmd
}

func rollbackCmd(logger *log.Logger, dir *string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd.Context(), logger, *dir, func(ctx context.Context, _ *gorm.DB, runner *migrations.Runner) error {
				if runner == nil {
					return fmt.Errorf("rollback is only supported for postgres")
				}
				return runner.Rollback(ctx, steps)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to revert")
	return cmd
}

// withMigrations opens the configured database and hands op a runner, or a
// nil runner when the database is sqlite.
func withMigrations(
	parent context.Context,
	logger *log.Logger,
	dir string,
	op func(ctx context.Context, db *gorm.DB, runner *migrations.Runner) error,
) error {
	config.InitializeEnvFile(logger)

	db, err := config.NewDatabase(logger, &config.DBConfig{SQLitePath: localStorePath})
	if err != nil {
		return fmt.Errorf("connect to database for migration: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	ctx, cancel := context.WithTimeout(parent, migrateTimeout)
	defer cancel()

	if db.Dialector.Name() == "sqlite" {
		return op(ctx, db, nil)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance for migration: %w", err)
	}

	return op(ctx, db, migrations.NewRunner(sqlDB, migrations.Config{Dir: dir, Logger: logger}))
}
