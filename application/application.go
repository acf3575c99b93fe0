package application

import (
	"context"
	"time"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

const (
	operationSetMembership = "set_membership"
	operationInsertBook    = "insert_book"
	operationDeleteBook    = "delete_book"
	operationCheckOutBook  = "check_out_book"
	operationCheckInBook   = "check_in_book"
	operationSellBook      = "sell_book"
	operationBuyBook       = "buy_book"
	operationWithdraw      = "withdraw"

	logMsgOperation = "application operation: "
	logAttrBookKey  = "book_key"
	logAttrIdentity = "identity"
	logAttrAmount   = "amount"
)

// Application is the logic tier of the registry. It holds only a reference
// to the store plus its own component identity; all persistent state lives
// behind the store's gated API.
//
// The owner identity may manage membership through SetMembership. The self
// identity is what the store sees as the caller of every mutation, so
// bootstrap must register it once via Store.AuthorizeCaller before any
// mutating operation is accepted.
type Application struct {
	store        registrystore.Store
	owner        registry.Identity
	self         registry.Identity
	notifier     registry.Notifier
	settlement   Settlement
	logger       registrystore.Logger
	clock        func() time.Time
	retryOptions []RetryOption
}

// Option defines a functional option for configuring the Application.
type Option func(*Application)

// WithNotifier sets the notifier receiving book lifecycle and payment
// notifications emitted by the application.
func WithNotifier(notifier registry.Notifier) Option {
	return func(a *Application) {
		a.notifier = notifier
	}
}

// WithSettlement sets the settlement backend used by Withdraw.
func WithSettlement(settlement Settlement) Option {
	return func(a *Application) {
		a.settlement = settlement
	}
}

// WithLogger sets the logger for operation outcomes.
func WithLogger(logger registrystore.Logger) Option {
	return func(a *Application) {
		a.logger = logger
	}
}

// WithClock overrides the time source used to stamp notifications.
func WithClock(clock func() time.Time) Option {
	return func(a *Application) {
		a.clock = clock
	}
}

// WithRetryOptions sets a custom retry configuration for concurrency
// conflict retries.
func WithRetryOptions(opts ...RetryOption) Option {
	return func(a *Application) {
		a.retryOptions = opts
	}
}

// New creates an Application on top of the given store.
//
// owner is the privileged identity allowed to manage membership; self is
// this component's own identity towards the store.
func New(store registrystore.Store, owner registry.Identity, self registry.Identity, options ...Option) (*Application, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if owner == "" || self == "" {
		return nil, ErrEmptyIdentity
	}

	a := &Application{
		store: store,
		owner: owner,
		self:  self,
		clock: time.Now,
	}

	for _, option := range options {
		option(a)
	}

	return a, nil
}

// Self returns the component identity the store sees as caller.
// Bootstrap passes it to Store.AuthorizeCaller exactly once.
func (a *Application) Self() registry.Identity {
	return a.self
}

// Operational reports the state of the circuit breaker.
func (a *Application) Operational(ctx context.Context) (bool, error) {
	return a.store.Operational(ctx)
}

// withRetry runs fn with the configured exponential backoff policy,
// retrying only on store concurrency conflicts.
func (a *Application) withRetry(ctx context.Context, fn RetryableFunc) error {
	return RetryWithExponentialBackoff(ctx, fn, a.retryOptions...)
}

// requireOwner passes only for the owner identity fixed at construction.
func (a *Application) requireOwner(caller registry.Identity) error {
	if caller != a.owner {
		return registrystore.ErrUnauthorized
	}

	return nil
}

// requireLibrarian rejects callers outside the librarian set.
func (a *Application) requireLibrarian(ctx context.Context, caller registry.Identity) error {
	isLibrarian, err := a.store.IsLibrarian(ctx, caller)
	if err != nil {
		return err
	}

	if !isLibrarian {
		return registrystore.ErrUnauthorized
	}

	return nil
}

func (a *Application) emit(ctx context.Context, notification registry.Notification) {
	if a.notifier != nil {
		a.notifier.Emit(ctx, notification)
	}
}

func (a *Application) logOperation(action string, args ...any) {
	if a.logger != nil {
		a.logger.Info(logMsgOperation+action, args...)
	}
}
