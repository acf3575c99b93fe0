package application

import (
	"errors"
)

// Rejections specific to the application layer. Authorization, operational
// and book-state failures reuse the registrystore sentinels so both tiers
// fail identically.
var (
	// ErrInvalidAmount is returned by BuyBook when the supplied payment does
	// not exactly match the listed price. No partial or overpayment credit
	// is ever issued.
	ErrInvalidAmount = errors.New("payment does not match the listed price")

	// ErrNothingToWithdraw is returned by Withdraw when the caller's balance
	// is zero, including the re-entrant case where the balance was already
	// debited by the enclosing call.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrPaymentFailed is returned by Withdraw when the settlement transfer
	// fails after the balance was debited. The debited amount is re-credited
	// before this error is returned.
	ErrPaymentFailed = errors.New("payment transfer failed, funds re-credited")

	// ErrNilStore is returned by New when no store is supplied.
	ErrNilStore = errors.New("store must not be nil")

	// ErrEmptyIdentity is returned by New when the owner or the component
	// identity is empty.
	ErrEmptyIdentity = errors.New("identity must not be empty")

	// ErrNilSettlement is returned by Withdraw when no settlement backend
	// was configured.
	ErrNilSettlement = errors.New("no settlement backend configured")
)
