package registrystore

import (
	"context"

	"github.com/openshelf/library-registry/registry"
)

// Store is the mutation and query API of the registry data store.
//
// Every mutating method takes the caller identity as its first argument
// after the context and re-validates it against the owner or the
// authorized-caller set, plus the operational switch where required,
// before touching any state. Reads are unrestricted.
//
// Failure semantics: a failed authorization or precondition aborts the
// entire call with no partial mutation and surfaces one of the typed
// errors of this package. Nothing is retried internally.
type Store interface {
	// SetOperatingStatus toggles the operational circuit breaker.
	// Owner-only; exempt from the operational check itself, otherwise the
	// breaker could never be reset.
	SetOperatingStatus(ctx context.Context, caller registry.Identity, operational bool) error

	// AuthorizeCaller adds an identity to the authorized-caller set. Owner-only.
	AuthorizeCaller(ctx context.Context, caller registry.Identity, authorized registry.Identity) error

	// DeauthorizeCaller removes an identity from the authorized-caller set. Owner-only.
	DeauthorizeCaller(ctx context.Context, caller registry.Identity, authorized registry.Identity) error

	// SetLibrarian adds or removes an identity from the librarian set.
	// Authorized-caller-only, operational-only; idempotent either way.
	SetLibrarian(ctx context.Context, caller registry.Identity, librarian registry.Identity, active bool) error

	// InsertBook creates a fresh book record owned by its origin librarian,
	// not checked out, with an empty transfer history.
	// Authorized-caller-only, operational-only; ErrAlreadyExists if present.
	InsertBook(ctx context.Context, caller registry.Identity, key registry.BookKey, originLibrarian registry.Identity) error

	// DeleteBook removes a book record and its whole transfer history.
	// Authorized-caller-only, operational-only; ErrNotFound if absent,
	// ErrConflict if the book is currently checked out.
	DeleteBook(ctx context.Context, caller registry.Identity, key registry.BookKey) error

	// RecordTransfer appends {from, notes} to the book's transfer history and
	// updates current owner and checked-out flag in the same atomic step.
	// Authorized-caller-only, operational-only; ErrNotFound if absent.
	RecordTransfer(
		ctx context.Context,
		caller registry.Identity,
		key registry.BookKey,
		newOwner registry.Identity,
		checkedOut bool,
		from registry.Identity,
		notes registry.NotesString,
	) error

	// SetPrice sets the sale price of a book; zero delists it.
	// Authorized-caller-only, operational-only; ErrNotFound if absent.
	SetPrice(ctx context.Context, caller registry.Identity, key registry.BookKey, price registry.Amount) error

	// Credit increases an account's withdrawable balance.
	// Authorized-caller-only, operational-only.
	Credit(ctx context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error

	// Debit decreases an account's withdrawable balance.
	// Authorized-caller-only, operational-only; ErrInsufficientBalance if
	// the amount exceeds the current balance.
	Debit(ctx context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error

	// Operational reports the state of the circuit breaker.
	Operational(ctx context.Context) (bool, error)

	// IsAuthorizedCaller reports membership in the authorized-caller set.
	IsAuthorizedCaller(ctx context.Context, identity registry.Identity) (bool, error)

	// IsLibrarian reports membership in the librarian set.
	IsLibrarian(ctx context.Context, identity registry.Identity) (bool, error)

	// IsBook reports whether a record exists for the key.
	IsBook(ctx context.Context, key registry.BookKey) (bool, error)

	// GetBook returns the book record; ErrNotFound if absent.
	GetBook(ctx context.Context, key registry.BookKey) (registry.Book, error)

	// GetTransfer returns one entry of the book's transfer history by its
	// zero-based chronological index; ErrNotFound if the book is absent,
	// ErrTransferNotFound if the index is out of range.
	GetTransfer(ctx context.Context, key registry.BookKey, index int) (registry.Transfer, error)

	// GetTransfers returns the book's whole transfer history in
	// chronological order; ErrNotFound if the book is absent.
	GetTransfers(ctx context.Context, key registry.BookKey) (registry.Transfers, error)

	// Balance returns an account's withdrawable balance; zero for unknown accounts.
	Balance(ctx context.Context, account registry.Identity) (registry.Amount, error)
}
