package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tabs in process memory. It backs tests and the memory backend.
type MemoryStore struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: make(map[string][][]string)}
}

// Seed replaces the content of a tab, header row included.
func (m *MemoryStore) Seed(tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab] = cloneRows(rows)
}

// Tab returns a copy of every row of a tab.
func (m *MemoryStore) Tab(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRows(m.tabs[tab])
}

func (m *MemoryStore) ReadRows(ctx context.Context, rng Range) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[rng.Tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rng.A1())
	}
	start := rng.FromRow - 1
	if start < 0 {
		start = 0
	}
	if start >= len(rows) {
		return [][]string{}, nil
	}
	out := make([][]string, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if rng.Columns > 0 && len(row) > rng.Columns {
			row = row[:rng.Columns]
		}
		out = append(out, trimTrailing(append([]string{}, row...)))
	}
	// the Sheets API omits trailing empty rows
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MemoryStore) WriteRows(ctx context.Context, rng Range, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab := m.tabs[rng.Tab]
	start := rng.FromRow - 1
	if start < 0 {
		start = 0
	}
	for len(tab) < start+len(rows) {
		tab = append(tab, nil)
	}
	for i, row := range rows {
		tab[start+i] = append([]string(nil), row...)
	}
	m.tabs[rng.Tab] = tab
	return nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab := m.trimmed(rng.Tab)
	tab = append(tab, append([]string(nil), row...))
	m.tabs[rng.Tab] = tab
	return len(tab), nil
}

func (m *MemoryStore) AppendRows(ctx context.Context, rng Range, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab := m.trimmed(rng.Tab)
	m.tabs[rng.Tab] = append(tab, cloneRows(rows)...)
	return nil
}

func (m *MemoryStore) ClearRows(ctx context.Context, rng Range) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tab := m.tabs[rng.Tab]
	start := rng.FromRow - 1
	if start < 0 {
		start = 0
	}
	if start < len(tab) {
		m.tabs[rng.Tab] = tab[:start]
	}
	return nil
}

func (m *MemoryStore) UpdateCell(ctx context.Context, tab string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell %s%d", ColumnLetter(col), row)
	}
	rows := m.tabs[tab]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	cells := rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	rows[row-1] = cells
	m.tabs[tab] = rows
	return nil
}

func (m *MemoryStore) EnsureTabsExist(ctx context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if _, ok := m.tabs[name]; !ok {
			m.tabs[name] = nil
		}
	}
	return nil
}

// trimmed drops trailing empty rows so appends land after the last used row.
func (m *MemoryStore) trimmed(tab string) [][]string {
	rows := m.tabs[tab]
	for len(rows) > 0 && len(trimTrailing(rows[len(rows)-1])) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
