package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/openshelf/library-registry/registrystore"
)

// CreateSchema creates all registry tables (respecting the configured table
// prefix) and seeds the operational status row to true. Safe to call on an
// already provisioned database.
func (s *Store) CreateSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				%s TEXT PRIMARY KEY,
				%s JSONB NOT NULL
			)`,
			s.tableName(tableBooks), colBookKey, colPayload,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				%s BIGSERIAL PRIMARY KEY,
				%s TEXT NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
				%s JSONB NOT NULL,
				%s TIMESTAMPTZ NOT NULL
			)`,
			s.tableName(tableBookTransfers),
			colID,
			colBookKey, s.tableName(tableBooks), colBookKey,
			colPayload,
			colRecordedAt,
		),
		fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s, %s)`,
			s.tableName(tableBookTransfers), colBookKey,
			s.tableName(tableBookTransfers), colBookKey, colID,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				%s TEXT PRIMARY KEY,
				%s BIGINT NOT NULL DEFAULT 0 CHECK (%s >= 0)
			)`,
			s.tableName(tableBalances), colIdentity, colAmount, colAmount,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)`,
			s.tableName(tableLibrarians), colIdentity,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)`,
			s.tableName(tableAuthorized), colIdentity,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				%s SMALLINT PRIMARY KEY,
				%s BOOLEAN NOT NULL
			)`,
			s.tableName(tableStatus), colID, colOperational,
		),
		fmt.Sprintf(
			`INSERT INTO %s (%s, %s) VALUES (%d, TRUE) ON CONFLICT (%s) DO NOTHING`,
			s.tableName(tableStatus), colID, colOperational, singletonStatusRowID, colID,
		),
	}

	return s.execSchemaStatements(ctx, statements)
}

// DropSchema removes all registry tables. Intended for tests and teardown.
func (s *Store) DropSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableBookTransfers)),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableBooks)),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableBalances)),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableLibrarians)),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableAuthorized)),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.tableName(tableStatus)),
	}

	return s.execSchemaStatements(ctx, statements)
}

// ResetSchema truncates all registry state and reseeds the operational
// status row to true. Intended for test isolation between cases.
func (s *Store) ResetSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(
			`TRUNCATE %s, %s, %s, %s, %s RESTART IDENTITY CASCADE`,
			s.tableName(tableBooks),
			s.tableName(tableBookTransfers),
			s.tableName(tableBalances),
			s.tableName(tableLibrarians),
			s.tableName(tableAuthorized),
		),
		fmt.Sprintf(
			`INSERT INTO %s (%s, %s) VALUES (%d, TRUE)
				ON CONFLICT (%s) DO UPDATE SET %s = TRUE`,
			s.tableName(tableStatus), colID, colOperational, singletonStatusRowID,
			colID, colOperational,
		),
	}

	return s.execSchemaStatements(ctx, statements)
}

func (s *Store) execSchemaStatements(ctx context.Context, statements []string) error {
	for _, statement := range statements {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			return errors.Join(registrystore.ErrExecutingFailed, err)
		}
	}

	return nil
}
