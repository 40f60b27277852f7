package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDevEnvironment(t *testing.T) {
	for _, env := range []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  ", " Testing "} {
		assert.True(t, IsDevEnvironment(env), env)
		assert.NoError(t, ValidateAutoMigrateAllowed(env), env)
	}

	for _, env := range []string{"prod", "production", "staging", "preprod", " Production ", "qa"} {
		assert.False(t, IsDevEnvironment(env), env)
		assert.Error(t, ValidateAutoMigrateAllowed(env), env)
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Run("database url wins and is redacted", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", `"postgres://app:s3cret@db:5432/telecheck"`)

		dsn, target, err := postgresDSN("require")
		assert.NoError(t, err)
		assert.Equal(t, "postgres://app:s3cret@db:5432/telecheck", dsn)
		assert.NotContains(t, target, "s3cret")
	})

	t.Run("assembled from parts", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", "")
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_PORT", "")
		t.Setenv("POSTGRES_USER", "app")
		t.Setenv("POSTGRES_PASSWORD", "p@ss word")
		t.Setenv("POSTGRES_DB_NAME", "telecheck")
		t.Setenv("POSTGRES_SSLMODE", "disable")

		dsn, target, err := postgresDSN("require")
		assert.NoError(t, err)
		assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/telecheck?sslmode=disable", dsn)
		assert.NotContains(t, target, "word")
	})

	t.Run("missing parts are listed", func(t *testing.T) {
		t.Setenv("APP_DATABASE_URL", "")
		t.Setenv("POSTGRES_HOST", "")
		t.Setenv("POSTGRES_USER", "app")
		t.Setenv("POSTGRES_DB_NAME", "")

		_, _, err := postgresDSN("require")
		assert.ErrorContains(t, err, "POSTGRES_HOST, POSTGRES_DB_NAME")
	})
}
