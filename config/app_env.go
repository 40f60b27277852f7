package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// devEnvironments unlock dev-only controls and --auto-migrate. An unset
// APP_ENV counts as development.
var devEnvironments = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads .env (or the file named by ENV_FILE) without
// overriding variables that are already set. SKIP_DOTENV=true disables it.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Debug("Skipping dotenv file")
		return
	}

	file := utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(file); err != nil {
		logger.Info("No dotenv file loaded", "file", file, "reason", err.Error())
		return
	}

	logger.Info("Loaded dotenv file", "file", file)
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

func IsDevEnvironment(appEnv string) bool {
	return slices.Contains(devEnvironments, strings.ToLower(strings.TrimSpace(appEnv)))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	if IsDevEnvironment(appEnv) {
		return nil
	}
	return fmt.Errorf("--auto-migrate refused for %s=%q; run `telecheck migrate` instead",
		AppEnvKey, strings.ToLower(strings.TrimSpace(appEnv)))
}
