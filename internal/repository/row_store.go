package repository

import (
	"context"
	"fmt"
	"strings"
)

// Range addresses a block of rows on one tab, from FromRow (1-based) down to the
// last used row, Columns cells wide.
type Range struct {
	Tab     string
	FromRow int
	Columns int
}

func NewRange(tab string, fromRow, columns int) Range {
	return Range{Tab: tab, FromRow: fromRow, Columns: columns}
}

// A1 renders the range in spreadsheet notation, e.g. 'Bookings'!A2:I.
func (r Range) A1() string {
	from := r.FromRow
	if from < 1 {
		from = 1
	}
	cols := r.Columns
	if cols < 1 {
		cols = 1
	}
	return fmt.Sprintf("%s!A%d:%s", quoteTab(r.Tab), from, ColumnLetter(cols))
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// ColumnLetter converts a 1-based column index into its letter name (1 -> A, 27 -> AA).
func ColumnLetter(col int) string {
	var name []byte
	for col > 0 {
		col--
		name = append([]byte{byte('A' + col%26)}, name...)
		col /= 26
	}
	return string(name)
}

// RowStore is the tabular persistence collaborator. Positions are 1-based and
// include the header row. Implementations return raw transport errors; RetryStore
// adds retries and wraps what is left in a PersistenceError.
type RowStore interface {
	ReadRows(ctx context.Context, rng Range) ([][]string, error)
	WriteRows(ctx context.Context, rng Range, rows [][]string) error
	AppendRow(ctx context.Context, rng Range, row []string) (int, error)
	AppendRows(ctx context.Context, rng Range, rows [][]string) error
	ClearRows(ctx context.Context, rng Range) error
	UpdateCell(ctx context.Context, tab string, row, col int, value string) error
	EnsureTabsExist(ctx context.Context, names []string) error
}

// trimTrailing drops empty trailing cells, matching what the Sheets API returns.
func trimTrailing(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
