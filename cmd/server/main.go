package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akeren/telecheck/config"
	"github.com/akeren/telecheck/domain"
	"github.com/akeren/telecheck/internal/log"
	"github.com/spf13/cobra"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	if err := serverCmd(logger).Execute(); err != nil {
		logger.Error("TeleCheck server stopped", "error", err)
		os.Exit(1)
	}
}

func serverCmd(logger *log.Logger) *cobra.Command {
	var (
		autoMigrate     bool
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "telecheck-server",
		Short:         "Serve the TeleCheck Bot HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, logger, autoMigrate, shutdownTimeout)
		},
	}

	cmd.Flags().BoolVarP(&autoMigrate, "auto-migrate", "m", false, "Create the SQL store schema on start (dev environments only)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Grace period for in-flight requests")
	return cmd
}

func serve(ctx context.Context, logger *log.Logger, autoMigrate bool, shutdownTimeout time.Duration) error {
	logger.Info("TeleCheck server initializing", "app_env", config.GetAppEnv(), "auto_migrate", autoMigrate)

	app, err := config.LoadApplicationConfiguration(logger, autoMigrate)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	defer app.Cleanup()

	domain.SetupCoreDomain(app)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.RouterService.RunHTTPServer()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received", "grace", shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.RouterService.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("Graceful shutdown completed")
	return nil
}
