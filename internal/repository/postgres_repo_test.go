package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPostgres connects to DATABASE_URL and returns the store plus a fresh tab
// name whose rows are removed when the test ends.
func newTestPostgres(t *testing.T) (*PostgresStore, string) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))
	store := NewPostgresStore(db)
	require.NoError(t, store.Migrate(ctx))

	tab := "test-" + uuid.NewString()
	require.NoError(t, store.EnsureTabsExist(ctx, []string{tab}))
	t.Cleanup(func() {
		db.Exec(`DELETE FROM sheet_rows WHERE tab = $1`, tab)
		db.Exec(`DELETE FROM sheet_tabs WHERE name = $1`, tab)
	})
	return store, tab
}

func TestPostgresStoreReadKeepsGaps(t *testing.T) {
	store, tab := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, store.WriteRows(ctx, NewRange(tab, 1, 3), [][]string{{"h1", "h2", "h3"}}))
	require.NoError(t, store.WriteRows(ctx, NewRange(tab, 2, 3), [][]string{{"a", "b", "c", "overflow"}, {"d", "", ""}}))
	require.NoError(t, store.WriteRows(ctx, NewRange(tab, 5, 3), [][]string{{"e"}, {"", ""}}))

	rows, err := store.ReadRows(ctx, NewRange(tab, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}, {}, {"e"}}, rows)

	rows, err = store.ReadRows(ctx, NewRange(tab, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "overflow"}, rows[1])
}

func TestPostgresStoreAppendReturnsPosition(t *testing.T) {
	store, tab := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, store.WriteRows(ctx, NewRange(tab, 1, 1), [][]string{{"header"}, {"one"}, {}}))

	row, err := store.AppendRow(ctx, NewRange(tab, 1, 1), []string{"two"})
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	require.NoError(t, store.AppendRows(ctx, NewRange(tab, 1, 1), [][]string{{"three"}, {"four"}}))
	row, err = store.AppendRow(ctx, NewRange(tab, 1, 1), []string{"five"})
	require.NoError(t, err)
	assert.Equal(t, 6, row)

	rows, err := store.ReadRows(ctx, NewRange(tab, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"header"}, {"one"}, {"two"}, {"three"}, {"four"}, {"five"}}, rows)
}

func TestPostgresStoreWriteClearUpdate(t *testing.T) {
	store, tab := newTestPostgres(t)
	ctx := context.Background()
	require.NoError(t, store.WriteRows(ctx, NewRange(tab, 1, 1), [][]string{{"header"}, {"a"}, {"b"}, {"c"}}))

	require.NoError(t, store.ClearRows(ctx, NewRange(tab, 3, 1)))
	require.NoError(t, store.UpdateCell(ctx, tab, 2, 3, "x"))
	require.NoError(t, store.UpdateCell(ctx, tab, 4, 1, "new"))

	rows, err := store.ReadRows(ctx, NewRange(tab, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"header"}, {"a", "", "x"}, {}, {"new"}}, rows)
}
