package main

import (
	"fmt"
	"os"

	"github.com/akeren/telecheck/config"
	"github.com/akeren/telecheck/domain"
	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// defaultSessionID is stable so consecutive CLI invocations share one session.
var defaultSessionID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("telecheck://cli")).String()

// localStorePath holds CLI state when no store is configured. SQLITE_PATH
// overrides it.
const localStorePath = "telecheck.db"

type cliContext struct {
	logger    *log.Logger
	sessionID string
	app       *config.ApplicationConfig
	services  *domain.Services
}

func main() {
	cli := &cliContext{logger: log.NewLoggerFromEnv(os.Stderr)}

	err := rootCmd(cli).Execute()
	cli.close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(cli *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "telecheck",
		Short:         "Operate a TeleCheck Bot deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.sessionID, "session", "s",
		utils.GetEnvTrimmedOrDefault("TELECHECK_SESSION_ID", defaultSessionID),
		"Session to act as (defaults to a fixed CLI session)")

	cmd.AddCommand(
		migrateCmd(cli.logger),
		registerCmd(cli),
		sessionCmd(cli),
		rosterCmd(cli),
		resetCmd(cli),
		forceAdminCmd(cli),
		forceUserCmd(cli),
		checkCmd(cli),
	)

	return cmd
}

// load connects the configured store once per invocation. Without a
// configured store the CLI keeps its state in a local sqlite file.
func (c *cliContext) load() error {
	if c.services != nil {
		return nil
	}

	app, err := config.LoadStoreConfigurationWithOptions(c.logger, config.StoreOptions{LocalSQLitePath: localStorePath})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	c.app = app
	c.services = domain.NewServices(app)
	return nil
}

func (c *cliContext) close() {
	if c.app != nil {
		c.app.Cleanup()
	}
}
