package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akeren/telecheck/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestCLI(t *testing.T) *cliContext {
	t.Setenv("SKIP_DOTENV", "true")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("APP_ENV", "test")
	t.Setenv("TELECHECK_ADMIN_EMAIL", "admin@telecheck.test")
	t.Setenv("NATS_URL", "")

	cli := &cliContext{logger: log.NewDiscardLogger()}
	t.Cleanup(cli.close)
	return cli
}

func execute(t *testing.T, cli *cliContext, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := rootCmd(cli)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// useLocalStore clears every store setting so the CLI falls back to its
// sqlite file in a fresh working directory.
func useLocalStore(t *testing.T, appEnv string) string {
	t.Setenv("SKIP_DOTENV", "true")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("APP_DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("APP_ENV", appEnv)
	t.Setenv("TELECHECK_ADMIN_EMAIL", "admin@telecheck.test")
	t.Setenv("NATS_URL", "")

	dir := t.TempDir()
	t.Chdir(dir)
	return filepath.Join(dir, localStorePath)
}

// runOnce executes a command in its own cliContext, the way a separate
// process would.
func runOnce(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cli := &cliContext{logger: log.NewDiscardLogger()}
	defer cli.close()
	return execute(t, cli, stdin, args...)
}

func TestCLI_StateSurvivesBetweenInvocations(t *testing.T) {
	dbPath := useLocalStore(t, "test")

	out, err := runOnce(t, "", "register", "admin@telecheck.test")
	require.NoError(t, err)
	assert.Contains(t, out, "status:  approved")
	assert.FileExists(t, dbPath)

	out, err = runOnce(t, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "email:   admin@telecheck.test")
	assert.Contains(t, out, "view:    admin")

	out, err = runOnce(t, "+123456789", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Bulk Check Complete: 1 numbers processed.")

	_, err = runOnce(t, "", "--session", "visitor", "register", "someone@example.com")
	require.NoError(t, err)

	out, err = runOnce(t, "", "roster", "approve", "someone@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "someone@example.com is now approved")

	out, err = runOnce(t, "+447911123456", "--session", "visitor", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Bulk Check Complete: 1 numbers processed.")
}

func TestCLI_ForceUserPersists(t *testing.T) {
	useLocalStore(t, "test")

	_, err := runOnce(t, "", "register", "someone@example.com")
	require.NoError(t, err)

	_, err = runOnce(t, "+123456789", "check")
	assert.Error(t, err)

	_, err = runOnce(t, "", "force-user")
	require.NoError(t, err)

	out, err := runOnce(t, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "status:  approved")

	_, err = runOnce(t, "+123456789", "check")
	assert.NoError(t, err)
}

func TestCLI_LocalStoreNeedsMigrationOutsideDev(t *testing.T) {
	useLocalStore(t, "production")

	_, err := runOnce(t, "", "session")
	assert.ErrorContains(t, err, "run `telecheck migrate` first")

	_, err = runOnce(t, "", "migrate")
	require.NoError(t, err)

	out, err := runOnce(t, "", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "status:  needs_entry")
}

func TestCLI_LogsStayOffStdout(t *testing.T) {
	useLocalStore(t, "test")

	var logs bytes.Buffer
	cli := &cliContext{logger: log.NewLogger(&logs, slog.LevelInfo)}
	defer cli.close()

	out, err := execute(t, cli, "", "register", "admin@telecheck.test")
	require.NoError(t, err)

	assert.NotContains(t, out, `"level"`)
	assert.NotContains(t, out, "Using SQL store")
	assert.Contains(t, logs.String(), "Using SQL store")
}

func TestCLI_RegisterAdminAndCheck(t *testing.T) {
	cli := newTestCLI(t)

	out, err := execute(t, cli, "", "register", "admin@telecheck.test")
	require.NoError(t, err)
	assert.Contains(t, out, "status:  approved")
	assert.Contains(t, out, "view:    admin")

	dir := t.TempDir()
	out, err = execute(t, cli, "+123456789, invalid; +447911123456", "check", "--export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Bulk Check Complete: 3 numbers processed.")
	assert.Contains(t, out, "Invalid phone number format.")
	assert.Contains(t, out, "Exported 3 rows to ")

	matches, err := filepath.Glob(filepath.Join(dir, "telecheck_results_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	wb, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("TeleCheck Results")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestCLI_CheckRequiresApproval(t *testing.T) {
	cli := newTestCLI(t)

	out, err := execute(t, cli, "", "register", "someone@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "status:  pending_approval")

	_, err = execute(t, cli, "", "check", "+123456789")
	assert.Error(t, err)
}

func TestCLI_RosterActions(t *testing.T) {
	cli := newTestCLI(t)

	_, err := execute(t, cli, "", "--session", "visitor", "register", "someone@example.com")
	require.NoError(t, err)

	_, err = execute(t, cli, "", "register", "admin@telecheck.test")
	require.NoError(t, err)

	out, err := execute(t, cli, "", "roster", "approve", "someone@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "someone@example.com is now approved")

	out, err = execute(t, cli, "", "roster")
	require.NoError(t, err)
	assert.Contains(t, out, "someone@example.com")
	assert.Contains(t, out, "0 pending")

	_, err = execute(t, cli, "", "roster", "promote", "someone@example.com")
	assert.ErrorContains(t, err, "unknown roster action")
}

func TestCLI_DevControlsRefusedOutsideDev(t *testing.T) {
	cli := newTestCLI(t)
	t.Setenv("APP_ENV", "production")

	_, err := execute(t, cli, "", "reset")
	assert.ErrorContains(t, err, "dev controls are disabled")
}

func TestReadNumbers(t *testing.T) {
	raw, err := readNumbers(strings.NewReader("ignored"), "", []string{"+1555", "+1666"})
	require.NoError(t, err)
	assert.Equal(t, "+1555\n+1666", raw)

	path := filepath.Join(t.TempDir(), "numbers.txt")
	require.NoError(t, os.WriteFile(path, []byte("+1777;+1888"), 0o600))
	raw, err = readNumbers(strings.NewReader("ignored"), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "+1777;+1888", raw)

	raw, err = readNumbers(strings.NewReader("+1999"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "+1999", raw)
}

func TestExportPath(t *testing.T) {
	dir := t.TempDir()

	path, err := exportPath(dir, "telecheck_results_2024-01-01.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "telecheck_results_2024-01-01.xlsx"), path)

	target := filepath.Join(dir, "out.xlsx")
	path, err = exportPath(target, "ignored.xlsx")
	require.NoError(t, err)
	assert.Equal(t, target, path)
}
