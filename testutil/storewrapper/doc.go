// Package storewrapper abstracts over the database adapters for integration
// tests: the ADAPTER_TYPE environment variable selects pgx.pool, sql.db or
// sqlx.db, so the same test suite exercises every adapter.
package storewrapper
