package accounts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/saldo/internal/model"
)

func TestNewService_SortsByCode(t *testing.T) {
	svc := NewService([]model.Account{
		{ID: 3, Code: "3200", Title: "Sales"},
		{ID: 1, Code: "1000", Title: "Cash"},
		{ID: 2, Code: "2000", Title: "Payables"},
	})

	var codes []string
	for _, a := range svc.All() {
		codes = append(codes, a.Code)
	}
	assert.Equal(t, []string{"1000", "2000", "3200"}, codes)
}

func TestNewService_DoesNotReorderInput(t *testing.T) {
	input := []model.Account{{ID: 2, Code: "2"}, {ID: 1, Code: "1"}}
	NewService(input)
	assert.Equal(t, int64(2), input[0].ID)
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart("kmu"))

	acct, ok := svc.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "Bank", acct.Title)

	_, ok = svc.Get(9999)
	assert.False(t, ok)

	assert.True(t, svc.Exists(1))
	assert.False(t, svc.Exists(9999))

	acct, ok = svc.GetByCode("2800")
	assert.True(t, ok)
	assert.Equal(t, "Share Capital", acct.Title)

	_, err := svc.MustGetByCode("9999")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestByType(t *testing.T) {
	svc := NewService(DefaultChart("kmu"))

	assets := svc.ByType(model.CurrentAssets, model.CapitalAssets)
	assert.Len(t, assets, 6)
	for i := 1; i < len(assets); i++ {
		assert.Less(t, assets[i-1].Code, assets[i].Code)
	}

	costs := svc.ByType(model.Costs)
	assert.Len(t, costs, 3)

	assert.Empty(t, svc.ByType())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	acctDir := filepath.Join(dir, "accounts")
	require.NoError(t, os.MkdirAll(acctDir, 0o755))

	for _, name := range []string{"chart-of-accounts.csv", "grouping-types.csv"} {
		src, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(acctDir, name), src, 0o644))
	}

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 16)
	require.NoError(t, svc.Validate())

	// 1021 sorts between 1020 and 1100 even though it is the last row.
	assert.Equal(t, "1021", svc.All()[2].Code)

	groups := svc.GroupingTypes()
	require.Len(t, groups, 2)
	assert.Equal(t, "A1", groups[0].Code)

	liquid := svc.ByGroupingType(1)
	require.Len(t, liquid, 4)
	assert.Equal(t, "1000", liquid[0].Code)
}

func TestLoad_NoGroupingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewService(DefaultChart("kmu")).Save(dir))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, svc.GroupingTypes())
}

func TestSaveRoundTrip(t *testing.T) {
	chart := DefaultChart("kmu")
	groups := []model.AccountGroupingType{{ID: 1, Code: "A1", Name: "Liquid funds"}}
	svc := NewService(chart, WithGroupingTypes(groups))

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc2.All(), len(chart))
	assert.Equal(t, groups, svc2.GroupingTypes())

	for _, orig := range chart {
		got, ok := svc2.Get(orig.ID)
		require.True(t, ok, "account %d should exist", orig.ID)
		assert.Equal(t, orig.Title, got.Title)
		assert.Equal(t, orig.Type, got.Type)
	}
}

func TestValidate(t *testing.T) {
	svc := NewService([]model.Account{
		{ID: 1, Code: "1000", Title: "Cash", Type: model.AccountType{Name: model.CurrentAssets}},
		{ID: 2, Code: "1000", Title: "Dup", Type: model.AccountType{Name: model.CurrentAssets}},
		{ID: 3, Code: "1100", Title: "No type"},
	})

	err := svc.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingRequiredField)
	assert.Contains(t, err.Error(), "duplicate code")
}

type stubTagging struct{}

func (stubTagging) FindByTag(context.Context, string) (model.Account, bool, error) {
	return model.Account{}, false, nil
}

func (stubTagging) TagCollection(context.Context) ([]string, error) { return nil, nil }

func TestTaggingIsOptional(t *testing.T) {
	svc := NewService(DefaultChart("kmu"))
	_, ok := svc.Tagging()
	assert.False(t, ok)

	svc.AttachTagging(stubTagging{})
	_, ok = svc.Tagging()
	assert.True(t, ok)
}
