package registrystore

import (
	"errors"
)

// Typed rejections surfaced by store entry points. Every precondition
// failure aborts the whole call with no partial state mutation.
var (
	// ErrUnauthorized is returned when the caller fails the owner or
	// authorized-caller check of a gated entry point.
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrNotOperational is returned by mutating entry points while the
	// operational circuit breaker is open.
	ErrNotOperational = errors.New("registry is not operational")

	// ErrNotFound is returned when the addressed book record is absent.
	ErrNotFound = errors.New("book not found")

	// ErrAlreadyExists is returned when inserting a book whose key is present.
	ErrAlreadyExists = errors.New("book already exists")

	// ErrConflict is returned for invalid state transitions, such as
	// deleting a book that is currently checked out.
	ErrConflict = errors.New("operation conflicts with current book state")

	// ErrInsufficientBalance is returned when a debit exceeds the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransferNotFound is returned when a transfer index is out of range.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrConcurrencyConflict is returned when a precondition that held at
	// read time no longer held when the guarded write executed. Callers may
	// retry; the store never retries internally.
	ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")

	// ErrNilDatabaseConnection is returned by engine constructors when the
	// supplied connection handle is nil.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyOwner is returned by engine constructors when no owner
	// identity is supplied.
	ErrEmptyOwner = errors.New("owner identity must not be empty")
)

// Infrastructure failures reported by engines, always joined with the
// underlying driver error.
var (
	ErrBuildingQueryFailed       = errors.New("failed to build query")
	ErrQueryingFailed            = errors.New("database query execution failed")
	ErrExecutingFailed           = errors.New("database execution failed")
	ErrScanningDBRowFailed       = errors.New("failed to scan database row")
	ErrGettingRowsAffectedFailed = errors.New("failed to get rows affected count")
	ErrMappingPayloadFailed      = errors.New("failed to map stored payload")
)
