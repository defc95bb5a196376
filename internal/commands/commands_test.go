package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProject initializes a CSV project and replaces its chart and journal with the
// shared testdata.
func newProject(t *testing.T, initArgs ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runSaldo(t, append([]string{"init", dir, "--name", "Test Biz"}, initArgs...)...)
	require.NoError(t, err, out)

	copyFile(t, "chart-of-accounts.csv", filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	copyFile(t, "grouping-types.csv", filepath.Join(dir, "accounts", "grouping-types.csv"))
	copyFile(t, "bookings.csv", filepath.Join(dir, "bookings.csv"))
	return dir
}

func copyFile(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func lines(out string) []string {
	return strings.Split(strings.TrimSpace(out), "\n")
}

func TestSaldo_AsOfDate(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "saldo", "1020", "--date", "2024-01-31")
	require.NoError(t, err, out)
	assert.Equal(t, "Bank (1020): 8800.00\n", out)

	out, err = runSaldo(t, "--repo", dir, "saldo", "1020", "--date", "2024-01-31", "--exclusive")
	require.NoError(t, err, out)
	assert.Equal(t, "Bank (1020): 10000.00\n", out, "the rent booking on the day is left out")
}

func TestSaldo_DefaultsToToday(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "saldo", "1000")
	require.NoError(t, err, out)
	assert.Equal(t, "Cash (1000): -80.00\n", out, "assets go negative when credited")

	out, err = runSaldo(t, "--repo", dir, "saldo", "2000")
	require.NoError(t, err, out)
	assert.Equal(t, "Accounts Payable (2000): 324.00\n", out)
}

func TestSaldo_ByTag(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "saldo", "vat:credit")
	require.NoError(t, err, out)
	assert.Equal(t, "Input VAT (1170): 24.00\n", out)
}

func TestSaldo_BookingRange(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "saldo", "1100", "--from-booking", "2", "--to-booking", "5")
	require.NoError(t, err, out)
	assert.Equal(t, "Accounts Receivable (1100): 0.00\n", out)

	out, err = runSaldo(t, "--repo", dir, "saldo", "1100", "--from-booking", "2", "--to-booking", "5", "--exclusive")
	require.NoError(t, err, out)
	assert.Equal(t, "Accounts Receivable (1100): 160.00\n", out)
}

func TestSaldo_Errors(t *testing.T) {
	dir := newProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"reversed range", []string{"saldo", "1020", "--from", "2024-02-01", "--to", "2024-01-01"}, "selector first is after last"},
		{"unknown account", []string{"saldo", "9999"}, "account not found"},
		{"unknown booking", []string{"saldo", "1020", "--booking", "99"}, "booking 99 not found"},
		{"bad date", []string{"saldo", "1020", "--date", "31.01.2024"}, "want YYYY-MM-DD"},
		{"half range", []string{"saldo", "1020", "--from", "2024-01-01"}, "to"},
		{"two selectors", []string{"saldo", "1020", "--date", "2024-01-01", "--booking", "1"}, "none of the others can be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runSaldo(t, append([]string{"--repo", dir}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestTurnover(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "turnover", "1020", "--booking", "4", "--exclusive")
	require.NoError(t, err, out)
	assert.Equal(t, []string{
		"Bank (1020), as of booking 4",
		"Credit: 0.00",
		"Debit:  10000.00",
		"Saldo:  10000.00",
	}, lines(out))

	out, err = runSaldo(t, "--repo", dir, "turnover", "1020", "--from", "2024-02-01", "--to", "2024-02-29")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Debit:  2160.00")
	assert.Contains(t, out, "Credit: 0.00")
}

func TestOverview(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "overview", "--date", "2024-01-31", "--nonzero")
	require.NoError(t, err, out)
	assert.Equal(t, []string{
		"Bank (1020): 8800.00",
		"Accounts Receivable (1100): 2160.00",
		"VAT Payable (2200): 160.00",
		"Share Capital (2800): 10000.00",
		"Sales Revenue (3200): 2000.00",
		"Rent (6000): 1200.00",
	}, lines(out))

	out, err = runSaldo(t, "--repo", dir, "overview", "--grouping", "1")
	require.NoError(t, err, out)
	assert.Equal(t, []string{
		"Cash (1000): -80.00",
		"Bank (1020): 10960.00",
		"Bank EUR (1021): 0.00",
		"Accounts Receivable (1100): 0.00",
	}, lines(out))

	_, err = runSaldo(t, "--repo", dir, "overview", "--exclusive")
	assert.Error(t, err, "overview always includes the boundary")
}

func TestBookings(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "bookings", "1020")
	require.NoError(t, err, out)
	got := lines(out)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "2024-01-02")
	assert.Contains(t, got[0], "10000.00")
	assert.Contains(t, got[1], "Office rent January")
	assert.Contains(t, got[1], "1020   6000")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(got[2]), "5 "))
}

func TestAccounts(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "accounts")
	require.NoError(t, err, out)
	got := lines(out)
	require.Len(t, got, 16)
	assert.True(t, strings.HasPrefix(got[2], "1021"), "code order")
	assert.Contains(t, got[3], "[invoice:debit]")

	out, err = runSaldo(t, "--repo", dir, "accounts", "--type", "costs")
	require.NoError(t, err, out)
	got = lines(out)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "profit/debit")

	out, err = runSaldo(t, "--repo", dir, "accounts", "--grouping", "2")
	require.NoError(t, err, out)
	assert.Len(t, lines(out), 2)
}

func TestBook(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "book",
		"--date", "2024-03-01", "--amount", "500", "--credit", "2800", "--debit", "1020", "--title", "More capital")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Booked 9: 2024-03-01 500.00 from Share Capital (2800) to Bank (1020)")

	out, err = runSaldo(t, "--repo", dir, "saldo", "1020")
	require.NoError(t, err, out)
	assert.Equal(t, "Bank (1020): 11460.00\n", out)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "book: 9 More capital", strings.TrimSpace(string(msg)))
}

func TestBook_Invalid(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "book", "--amount", "1.005", "--credit", "2800", "--debit", "1020")
	require.Error(t, err)
	assert.Contains(t, out, "more than 2 decimal places")

	out, err = runSaldo(t, "--repo", dir, "book", "--amount", "1", "--credit", "1020", "--debit", "1020")
	require.Error(t, err)
	assert.Contains(t, out, "rule 3")
}

func TestTags(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "tags", "list")
	require.NoError(t, err, out)
	assert.Equal(t, []string{
		"invoice:debit", "invoice:earnings", "invoice:credit", "invoice:costs", "vat:credit", "vat:debit",
	}, lines(out))

	out, err = runSaldo(t, "--repo", dir, "tags", "find", "invoice:costs")
	require.NoError(t, err, out)
	assert.Equal(t, "Cost of Goods (4200)\n", out)

	out, err = runSaldo(t, "--repo", dir, "tags", "add", "1000", "invoice:debit", "petty")
	require.NoError(t, err, out)
	assert.Equal(t, "Cash (1000): invoice:debit, petty\n", out)

	out, err = runSaldo(t, "--repo", dir, "tags", "find", "invoice:debit")
	require.Error(t, err)
	assert.Contains(t, out, "Given tag 'invoice:debit' is ambiguous, found 2 records")

	out, err = runSaldo(t, "--repo", dir, "tags", "list")
	require.NoError(t, err, out)
	assert.Equal(t, "petty", lines(out)[6])

	out, err = runSaldo(t, "--repo", dir, "tags", "remove", "1000", "invoice:debit")
	require.NoError(t, err, out)
	out, err = runSaldo(t, "--repo", dir, "tags", "find", "invoice:debit")
	require.NoError(t, err, out)
	assert.Equal(t, "Accounts Receivable (1100)\n", out)
}

func TestTags_Disabled(t *testing.T) {
	dir := newProject(t, "--tagging", "none")

	out, err := runSaldo(t, "--repo", dir, "tags", "list")
	require.Error(t, err)
	assert.Contains(t, out, "tagging is disabled")

	out, err = runSaldo(t, "--repo", dir, "saldo", "vat:credit")
	require.Error(t, err)
	assert.Contains(t, out, "account not found")
}

func TestTags_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := newProject(t, "--tagging", "redis", "--redis-addr", mr.Addr())

	members, err := mr.SMembers("tag:vat:debit")
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, members, "init seeds the default tags")

	out, err := runSaldo(t, "--repo", dir, "tags", "add", "6000", "overhead")
	require.NoError(t, err, out)
	out, err = runSaldo(t, "--repo", dir, "saldo", "overhead", "--date", "2024-01-31")
	require.NoError(t, err, out)
	assert.Equal(t, "Rent (6000): 1200.00\n", out)
}

func TestSQLiteProject(t *testing.T) {
	dir := t.TempDir()
	out, err := runSaldo(t, "init", dir, "--name", "Test Biz", "--storage", "sqlite")
	require.NoError(t, err, out)

	for _, args := range [][]string{
		{"--date", "2024-01-02", "--amount", "10000", "--credit", "2800", "--debit", "1020"},
		{"--date", "2024-01-31", "--amount", "1200", "--credit", "1020", "--debit", "6000", "--title", "Rent"},
	} {
		out, err := runSaldo(t, append([]string{"--repo", dir, "book"}, args...)...)
		require.NoError(t, err, out)
	}

	out, err = runSaldo(t, "--repo", dir, "saldo", "1020")
	require.NoError(t, err, out)
	assert.Equal(t, "Bank (1020): 8800.00\n", out)

	out, err = runSaldo(t, "--repo", dir, "turnover", "1020", "--booking", "2", "--exclusive")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Saldo:  10000.00")

	out, err = runSaldo(t, "--repo", dir, "bookings", "6000")
	require.NoError(t, err, out)
	assert.Len(t, lines(out), 1)
}

func TestLogLevel(t *testing.T) {
	dir := newProject(t)

	out, err := runSaldo(t, "--repo", dir, "saldo", "1020")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "DEBUG")

	out, err = runSaldo(t, "--repo", dir, "--log-level", "debug", "saldo", "1020")
	require.NoError(t, err, out)
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "turnover")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SALDO_LOG_LEVEL=debug\n"), 0o644))
	out, err = runSaldo(t, "--repo", dir, "saldo", "1020")
	require.NoError(t, err, out)
	assert.Contains(t, out, "DEBUG", ".env is loaded")
}
