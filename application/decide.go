package application

import (
	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

// Pure decision helpers for the book state machine. Each takes the state
// read from the store plus the command inputs and returns the typed
// rejection, or nil when the transition is allowed. No side effects, so
// they are testable without any store.

// decideCheckOut allows lending only while the book is available.
func decideCheckOut(book registry.Book) error {
	if book.CheckedOut {
		return registrystore.ErrConflict
	}

	return nil
}

// decideCheckIn allows returning only a book that is actually lent out.
func decideCheckIn(book registry.Book) error {
	if !book.CheckedOut {
		return registrystore.ErrConflict
	}

	return nil
}

// decideSell allows listing (or delisting via price zero) only by the
// current owner and only while the book is not lent out.
func decideSell(book registry.Book, seller registry.Identity) error {
	if seller != book.CurrentOwner {
		return registrystore.ErrUnauthorized
	}

	if book.CheckedOut {
		return registrystore.ErrConflict
	}

	return nil
}

// decideBuy allows a purchase only of a listed book and only when the
// payment exactly matches the listed price.
func decideBuy(book registry.Book, payment registry.Amount) error {
	if book.PriceForSale == 0 {
		return registrystore.ErrConflict
	}

	if payment != book.PriceForSale {
		return ErrInvalidAmount
	}

	return nil
}

// decideWithdraw rejects withdrawing a zero balance, which is also what a
// re-entrant withdrawal observes after the enclosing call debited it.
func decideWithdraw(balance registry.Amount) error {
	if balance == 0 {
		return ErrNothingToWithdraw
	}

	return nil
}
