package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheet_tabs (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS sheet_rows (
	tab      TEXT    NOT NULL,
	position INTEGER NOT NULL,
	cells    TEXT[]  NOT NULL,
	PRIMARY KEY (tab, position)
);`

// PostgresStore keeps the same tab/row layout as the spreadsheet in PostgreSQL.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (r *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating row store schema: %w", err)
	}
	return nil
}

func (r *PostgresStore) ReadRows(ctx context.Context, rng Range) ([][]string, error) {
	query := `SELECT position, cells FROM sheet_rows WHERE tab = $1 AND position >= $2 ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, rng.Tab, rng.FromRow)
	if err != nil {
		return nil, fmt.Errorf("error querying rows of %s: %w", rng.Tab, err)
	}
	defer rows.Close()

	out := [][]string{}
	next := rng.FromRow
	for rows.Next() {
		var position int
		var cells []string
		if err := rows.Scan(&position, pq.Array(&cells)); err != nil {
			return nil, fmt.Errorf("error scanning row of %s: %w", rng.Tab, err)
		}
		// keep positional identity across gaps
		for ; next < position; next++ {
			out = append(out, []string{})
		}
		if rng.Columns > 0 && len(cells) > rng.Columns {
			cells = cells[:rng.Columns]
		}
		out = append(out, trimTrailing(cells))
		next = position + 1
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows of %s: %w", rng.Tab, err)
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (r *PostgresStore) WriteRows(ctx context.Context, rng Range, rows [][]string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for i, row := range rows {
			if err := upsertRow(ctx, tx, rng.Tab, rng.FromRow+i, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	var position int
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		position, err = nextPosition(ctx, tx, rng.Tab)
		if err != nil {
			return err
		}
		return upsertRow(ctx, tx, rng.Tab, position, row)
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (r *PostgresStore) AppendRows(ctx context.Context, rng Range, rows [][]string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		position, err := nextPosition(ctx, tx, rng.Tab)
		if err != nil {
			return err
		}
		for i, row := range rows {
			if err := upsertRow(ctx, tx, rng.Tab, position+i, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresStore) ClearRows(ctx context.Context, rng Range) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sheet_rows WHERE tab = $1 AND position >= $2`, rng.Tab, rng.FromRow)
	if err != nil {
		return fmt.Errorf("error clearing %s: %w", rng.Tab, err)
	}
	return nil
}

func (r *PostgresStore) UpdateCell(ctx context.Context, tab string, row, col int, value string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var cells []string
		err := tx.QueryRowContext(ctx,
			`SELECT cells FROM sheet_rows WHERE tab = $1 AND position = $2 FOR UPDATE`, tab, row,
		).Scan(pq.Array(&cells))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("error loading %s row %d: %w", tab, row, err)
		}
		for len(cells) < col {
			cells = append(cells, "")
		}
		cells[col-1] = value
		return upsertRow(ctx, tx, tab, row, cells)
	})
}

func (r *PostgresStore) EnsureTabsExist(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.DB.ExecContext(ctx, `INSERT INTO sheet_tabs (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return fmt.Errorf("error registering tab %s: %w", name, err)
		}
	}
	return nil
}

func (r *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func nextPosition(ctx context.Context, tx *sql.Tx, tab string) (int, error) {
	var position int
	// serialise appends per tab; blank rows at the end are reused like the sheet does
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tab); err != nil {
		return 0, fmt.Errorf("error locking %s: %w", tab, err)
	}
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM sheet_rows WHERE tab = $1 AND array_to_string(cells, '') <> ''`, tab).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("error computing next position of %s: %w", tab, err)
	}
	return position, nil
}

func upsertRow(ctx context.Context, tx *sql.Tx, tab string, position int, cells []string) error {
	if cells == nil {
		cells = []string{}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sheet_rows (tab, position, cells) VALUES ($1, $2, $3)
		ON CONFLICT (tab, position) DO UPDATE SET cells = EXCLUDED.cells`,
		tab, position, pq.Array(cells))
	if err != nil {
		return fmt.Errorf("error writing %s row %d: %w", tab, position, err)
	}
	return nil
}

// IsRetryablePostgresError reports connection failures and serialization aborts.
func IsRetryablePostgresError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			return true
		}
		return false
	}
	return errors.Is(err, sql.ErrConnDone)
}
