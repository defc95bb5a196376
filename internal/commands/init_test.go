package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsCSV "github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/config"
	"github.com/cleared-dev/saldo/internal/tags"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "saldo-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "saldo")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/saldo")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runSaldo(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runSaldo(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized saldo project at "+dir)

	for _, f := range []string{
		config.FileName,
		"bookings.csv",
		filepath.Join("accounts", "chart-of-accounts.csv"),
		filepath.Join("accounts", "tags.yaml"),
		".gitignore",
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir, "--name", "My Company")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "kmu", cfg.Business.Chart)
	assert.Equal(t, config.StorageCSV, cfg.Storage.Backend)
	assert.Equal(t, config.TaggingFile, cfg.Tagging.Backend)
}

func TestInit_Accounts(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	path := filepath.Join(dir, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	accts, err := accountsCSV.ReadAccounts(f)
	require.NoError(t, err)
	assert.Len(t, accts, 15, "default kmu chart has 15 accounts")
}

func TestInit_SeedsTags(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	store, err := tags.LoadFile(filepath.Join(dir, "accounts", "tags.yaml"))
	require.NoError(t, err)
	ids, err := store.TaggedWith(t.Context(), "vat:debit")
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, ids, "VAT Payable carries vat:debit")
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	// .git directory should exist.
	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	// git log should have an init commit.
	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")

	// Verify author.
	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Saldo <saldo@localhost>")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
	assert.NotContains(t, string(data), "saldo.db")
}

func TestInit_SQLite(t *testing.T) {
	dir := t.TempDir()
	out, err := runSaldo(t, "init", dir, "--name", "Test Biz", "--storage", "sqlite")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, "saldo.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	assert.True(t, os.IsNotExist(err), "accounts live in the database")

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "saldo.db")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "saldo.db", cfg.Storage.DSN)
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runSaldo(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_UnknownChart(t *testing.T) {
	out, err := runSaldo(t, "init", t.TempDir(), "--name", "Test Biz", "--chart", "ifrs")
	require.Error(t, err)
	assert.Contains(t, out, `unknown chart "ifrs"`)
}

func TestInit_RedisNeedsAddress(t *testing.T) {
	out, err := runSaldo(t, "init", t.TempDir(), "--name", "Test Biz", "--tagging", "redis")
	require.Error(t, err)
	assert.Contains(t, out, "requires redis_addr")
}
