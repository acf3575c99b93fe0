package adapters

import (
	"context"
	"database/sql"
	"errors"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query executes a query using the sql.DB and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &stdRows{rows: rows}, nil
}

// QueryRow executes a single-row query using the sql.DB.
func (s *SQLAdapter) QueryRow(ctx context.Context, query string) DBRow {
	return &stdRow{row: s.db.QueryRowContext(ctx, query)}
}

// Exec executes a query using the sql.DB and returns wrapped result.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &stdResult{result: result}, nil
}

// stdRow wraps standard library sql.Row to implement the DBRow interface.
type stdRow struct {
	row *sql.Row
}

// Scan copies row values into provided destinations, mapping the stdlib
// no-rows sentinel to ErrNoRows.
func (s *stdRow) Scan(dest ...any) error {
	if err := s.row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRows
		}

		return err
	}

	return nil
}
