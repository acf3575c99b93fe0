// Package postgresengine provides the PostgreSQL implementation of the
// registry store contract.
//
// This package keeps books as keyed jsonb payloads with an append-only
// transfer table, supporting multiple database adapters (pgx, sql.DB, sqlx)
// with atomic operations and concurrency control. Every mutation is a single
// guarded SQL statement validated through its rows-affected count, so a
// precondition that stopped holding between read and write surfaces as
// registrystore.ErrConcurrencyConflict instead of corrupting state.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Independent re-validation of caller authorization and operational
//     status on every mutating entry point
//   - Atomic transfer recording via a data-modifying CTE (book update and
//     history append in one statement)
//   - Configurable table prefix and dual-logger support
//
// Usage example:
//
//	pool, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(pool, owner)
//	err := store.InsertBook(ctx, appIdentity, key, librarian)
package postgresengine
