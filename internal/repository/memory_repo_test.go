package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReadMissingTab(t *testing.T) {
	_, err := NewMemoryStore().ReadRows(context.Background(), NewRange("Nope", 2, 9))
	assert.Error(t, err)
}

func TestMemoryStoreReadBehavesLikeSheets(t *testing.T) {
	m := NewMemoryStore()
	m.Seed("T", [][]string{
		{"h1", "h2", "h3"},
		{"a", "b", "c", "overflow"},
		{"d", "", ""},
		{},
		{"e"},
		{"", ""},
		{},
	})

	rows, err := m.ReadRows(context.Background(), NewRange("T", 2, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}, {}, {"e"}}, rows)
}

func TestMemoryStoreAppendReturnsPosition(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.Seed("T", [][]string{{"header"}, {"one"}, {}})

	row, err := m.AppendRow(ctx, NewRange("T", 1, 1), []string{"two"})
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	require.NoError(t, m.AppendRows(ctx, NewRange("T", 1, 1), [][]string{{"three"}, {"four"}}))
	assert.Equal(t, [][]string{{"header"}, {"one"}, {"two"}, {"three"}, {"four"}}, m.Tab("T"))
}

func TestMemoryStoreWriteClearUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.Seed("T", [][]string{{"header"}, {"a"}, {"b"}, {"c"}})

	require.NoError(t, m.WriteRows(ctx, NewRange("T", 2, 1), [][]string{{"x"}}))
	require.NoError(t, m.ClearRows(ctx, NewRange("T", 3, 1)))
	require.NoError(t, m.UpdateCell(ctx, "T", 2, 3, "marker"))

	assert.Equal(t, [][]string{{"header"}, {"x", "", "marker"}}, m.Tab("T"))
	assert.Error(t, m.UpdateCell(ctx, "T", 0, 1, "bad"))
}

func TestMemoryStoreEnsureTabsKeepsContent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	m.Seed("Existing", [][]string{{"keep"}})

	require.NoError(t, m.EnsureTabsExist(ctx, []string{"Existing", "New"}))
	assert.Equal(t, [][]string{{"keep"}}, m.Tab("Existing"))

	rows, err := m.ReadRows(ctx, NewRange("New", 1, 1))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
