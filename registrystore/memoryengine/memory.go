// Package memoryengine provides an in-memory implementation of the registry
// store contract with the same authorization gate and error semantics as the
// PostgreSQL engine. It is intended for tests and local development; nothing
// survives a process restart.
package memoryengine

import (
	"context"
	"sync"
	"time"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithNotifier sets the notifier receiving MembershipChanged and
// OperatingStatusChanged notifications emitted by the store.
func WithNotifier(notifier registry.Notifier) Option {
	return func(s *Store) {
		s.notifier = notifier
	}
}

// WithClock overrides the time source used to stamp notifications.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

type bookRecord struct {
	originLibrarian registry.Identity
	currentOwner    registry.Identity
	checkedOut      bool
	priceForSale    registry.Amount
	transfers       []registry.Transfer
}

// Store is the in-memory implementation of registrystore.Store.
// A single mutex serializes all access, which matches the one-call-at-a-time
// execution model the contract assumes.
type Store struct {
	mu          sync.Mutex
	owner       registry.Identity
	operational bool
	authorized  map[registry.Identity]struct{}
	librarians  map[registry.Identity]struct{}
	books       map[registry.BookKey]*bookRecord
	balances    map[registry.Identity]registry.Amount
	notifier    registry.Notifier
	clock       func() time.Time
}

var _ registrystore.Store = (*Store)(nil)

// NewStore creates an in-memory store owned by the given identity,
// operational by default with all sets empty.
func NewStore(owner registry.Identity, options ...Option) (*Store, error) {
	if owner == "" {
		return nil, registrystore.ErrEmptyOwner
	}

	s := &Store{
		owner:       owner,
		operational: true,
		authorized:  make(map[registry.Identity]struct{}),
		librarians:  make(map[registry.Identity]struct{}),
		books:       make(map[registry.BookKey]*bookRecord),
		balances:    make(map[registry.Identity]registry.Amount),
		clock:       time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s, nil
}

// SetOperatingStatus toggles the operational circuit breaker.
// Owner-only and exempt from the operational check itself.
func (s *Store) SetOperatingStatus(ctx context.Context, caller registry.Identity, operational bool) error {
	s.mu.Lock()

	if caller != s.owner {
		s.mu.Unlock()
		return registrystore.ErrUnauthorized
	}

	s.operational = operational
	s.mu.Unlock()

	// Emit outside the lock so a notifier may read back from the store.
	s.emit(ctx, registry.BuildOperatingStatusChanged(operational, s.clock()))

	return nil
}

// AuthorizeCaller adds an identity to the authorized-caller set. Owner-only, idempotent.
func (s *Store) AuthorizeCaller(_ context.Context, caller registry.Identity, authorized registry.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return registrystore.ErrUnauthorized
	}

	s.authorized[authorized] = struct{}{}

	return nil
}

// DeauthorizeCaller removes an identity from the authorized-caller set. Owner-only, idempotent.
func (s *Store) DeauthorizeCaller(_ context.Context, caller registry.Identity, authorized registry.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return registrystore.ErrUnauthorized
	}

	delete(s.authorized, authorized)

	return nil
}

// SetLibrarian adds or removes an identity from the librarian set.
// Idempotent either way; the emitted notification carries the resulting state.
func (s *Store) SetLibrarian(ctx context.Context, caller registry.Identity, librarian registry.Identity, active bool) error {
	s.mu.Lock()

	if err := s.requireGate(caller); err != nil {
		s.mu.Unlock()
		return err
	}

	if active {
		s.librarians[librarian] = struct{}{}
	} else {
		delete(s.librarians, librarian)
	}

	s.mu.Unlock()

	// Emit outside the lock so a notifier may read back from the store.
	s.emit(ctx, registry.BuildMembershipChanged(librarian, active, s.clock()))

	return nil
}

// InsertBook creates a fresh book record owned by its origin librarian.
func (s *Store) InsertBook(
	_ context.Context,
	caller registry.Identity,
	key registry.BookKey,
	originLibrarian registry.Identity,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	if _, exists := s.books[key]; exists {
		return registrystore.ErrAlreadyExists
	}

	s.books[key] = &bookRecord{
		originLibrarian: originLibrarian,
		currentOwner:    originLibrarian,
	}

	return nil
}

// DeleteBook removes a book record and its whole transfer history.
func (s *Store) DeleteBook(_ context.Context, caller registry.Identity, key registry.BookKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	book, exists := s.books[key]
	if !exists {
		return registrystore.ErrNotFound
	}

	if book.checkedOut {
		return registrystore.ErrConflict
	}

	delete(s.books, key)

	return nil
}

// RecordTransfer appends a ledger entry and updates current owner and
// checked-out flag in one step.
func (s *Store) RecordTransfer(
	_ context.Context,
	caller registry.Identity,
	key registry.BookKey,
	newOwner registry.Identity,
	checkedOut bool,
	from registry.Identity,
	notes registry.NotesString,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	book, exists := s.books[key]
	if !exists {
		return registrystore.ErrNotFound
	}

	book.currentOwner = newOwner
	book.checkedOut = checkedOut
	book.transfers = append(book.transfers, registry.Transfer{From: from, Notes: notes})

	return nil
}

// SetPrice sets the sale price of a book; zero delists it.
func (s *Store) SetPrice(_ context.Context, caller registry.Identity, key registry.BookKey, price registry.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	book, exists := s.books[key]
	if !exists {
		return registrystore.ErrNotFound
	}

	book.priceForSale = price

	return nil
}

// Credit increases an account's withdrawable balance. Zero amounts are a no-op.
func (s *Store) Credit(_ context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	s.balances[account] += amount

	return nil
}

// Debit decreases an account's withdrawable balance.
func (s *Store) Debit(_ context.Context, caller registry.Identity, account registry.Identity, amount registry.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireGate(caller); err != nil {
		return err
	}

	if s.balances[account] < amount {
		return registrystore.ErrInsufficientBalance
	}

	s.balances[account] -= amount

	return nil
}

// Operational reports the state of the circuit breaker.
func (s *Store) Operational(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.operational, nil
}

// IsAuthorizedCaller reports membership in the authorized-caller set.
func (s *Store) IsAuthorizedCaller(_ context.Context, identity registry.Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.authorized[identity]

	return exists, nil
}

// IsLibrarian reports membership in the librarian set.
func (s *Store) IsLibrarian(_ context.Context, identity registry.Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.librarians[identity]

	return exists, nil
}

// IsBook reports whether a record exists for the key.
func (s *Store) IsBook(_ context.Context, key registry.BookKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.books[key]

	return exists, nil
}

// GetBook returns the book record including its transfer count.
func (s *Store) GetBook(_ context.Context, key registry.BookKey) (registry.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, exists := s.books[key]
	if !exists {
		return registry.Book{}, registrystore.ErrNotFound
	}

	return registry.Book{
		Key:             key,
		OriginLibrarian: book.originLibrarian,
		CurrentOwner:    book.currentOwner,
		CheckedOut:      book.checkedOut,
		PriceForSale:    book.priceForSale,
		TransferCount:   len(book.transfers),
	}, nil
}

// GetTransfer returns one entry of the book's transfer history by its
// zero-based chronological index.
func (s *Store) GetTransfer(_ context.Context, key registry.BookKey, index int) (registry.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, exists := s.books[key]
	if !exists {
		return registry.Transfer{}, registrystore.ErrNotFound
	}

	if index < 0 || index >= len(book.transfers) {
		return registry.Transfer{}, registrystore.ErrTransferNotFound
	}

	return book.transfers[index], nil
}

// GetTransfers returns the book's whole transfer history in chronological order.
func (s *Store) GetTransfers(_ context.Context, key registry.BookKey) (registry.Transfers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, exists := s.books[key]
	if !exists {
		return nil, registrystore.ErrNotFound
	}

	out := make(registry.Transfers, len(book.transfers))
	copy(out, book.transfers)

	return out, nil
}

// Balance returns an account's withdrawable balance, zero for unknown accounts.
func (s *Store) Balance(_ context.Context, account registry.Identity) (registry.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances[account], nil
}

// requireGate re-validates caller authorization first and the operational
// switch second. Callers must hold the mutex.
func (s *Store) requireGate(caller registry.Identity) error {
	if _, authorized := s.authorized[caller]; !authorized {
		return registrystore.ErrUnauthorized
	}

	if !s.operational {
		return registrystore.ErrNotOperational
	}

	return nil
}

func (s *Store) emit(ctx context.Context, notification registry.Notification) {
	if s.notifier != nil {
		s.notifier.Emit(ctx, notification)
	}
}
