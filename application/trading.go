package application

import (
	"context"
	"errors"

	"github.com/openshelf/library-registry/registry"
)

// SellBook lists a book for sale, or delists it when price is zero.
// Only the current owner may call it, and only while the book is not
// checked out. A positive price also records a transfer entry carrying the
// seller's condition notes.
func (a *Application) SellBook(
	ctx context.Context,
	caller registry.Identity,
	title string,
	author string,
	publishedDate uint,
	price registry.Amount,
	notes registry.NotesString,
) error {
	key := registry.NewBookKey(title, author, publishedDate)

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		book, readErr := a.store.GetBook(retryCtx, key)
		if readErr != nil {
			return readErr
		}

		if decideErr := decideSell(book, caller); decideErr != nil {
			return decideErr
		}

		if setPriceErr := a.store.SetPrice(retryCtx, a.self, key, price); setPriceErr != nil {
			return setPriceErr
		}

		if price > 0 {
			return a.store.RecordTransfer(retryCtx, a.self, key, book.CurrentOwner, false, caller, notes)
		}

		return nil
	})
	if err != nil {
		return err
	}

	a.emit(ctx, registry.BuildBookPutOnSale(key, title, price, a.clock()))
	a.logOperation(operationSellBook, logAttrBookKey, key, logAttrAmount, price)

	return nil
}

// BuyBook purchases a listed book. The payment must exactly equal the
// listed price; mismatches fail with ErrInvalidAmount and no credit is
// issued. On success the prior owner's withdrawable balance grows by the
// price, the buyer becomes current owner, and the book is delisted.
func (a *Application) BuyBook(
	ctx context.Context,
	caller registry.Identity,
	title string,
	author string,
	publishedDate uint,
	payment registry.Amount,
) error {
	key := registry.NewBookKey(title, author, publishedDate)

	var price registry.Amount

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		book, readErr := a.store.GetBook(retryCtx, key)
		if readErr != nil {
			return readErr
		}

		if decideErr := decideBuy(book, payment); decideErr != nil {
			return decideErr
		}

		price = book.PriceForSale

		// Escrow the sale amount with the prior owner before touching
		// ownership, then hand over and delist.
		if creditErr := a.store.Credit(retryCtx, a.self, book.CurrentOwner, price); creditErr != nil {
			return creditErr
		}

		transferErr := a.store.RecordTransfer(retryCtx, a.self, key, caller, false, book.CurrentOwner, "")
		if transferErr != nil {
			return transferErr
		}

		return a.store.SetPrice(retryCtx, a.self, key, 0)
	})
	if err != nil {
		return err
	}

	a.emit(ctx, registry.BuildBookSold(key, title, price, caller, a.clock()))
	a.logOperation(operationBuyBook, logAttrBookKey, key, logAttrAmount, price)

	return nil
}

// Withdraw pays out the caller's entire accrued balance.
//
// Checks-effects-interactions ordering: the balance is debited in the store
// strictly before the settlement transfer runs, so a re-entrant withdrawal
// triggered from inside the transfer observes zero and fails with
// ErrNothingToWithdraw. A failed transfer re-credits the amount and
// surfaces ErrPaymentFailed.
func (a *Application) Withdraw(ctx context.Context, caller registry.Identity) (registry.Amount, error) {
	if a.settlement == nil {
		return 0, ErrNilSettlement
	}

	var amount registry.Amount

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		balance, readErr := a.store.Balance(retryCtx, caller)
		if readErr != nil {
			return readErr
		}

		if decideErr := decideWithdraw(balance); decideErr != nil {
			return decideErr
		}

		if debitErr := a.store.Debit(retryCtx, a.self, caller, balance); debitErr != nil {
			return debitErr
		}

		if transferErr := a.settlement.Transfer(retryCtx, caller, balance); transferErr != nil {
			if creditErr := a.store.Credit(retryCtx, a.self, caller, balance); creditErr != nil {
				return errors.Join(ErrPaymentFailed, transferErr, creditErr)
			}

			return errors.Join(ErrPaymentFailed, transferErr)
		}

		amount = balance

		return nil
	})
	if err != nil {
		return 0, err
	}

	a.emit(ctx, registry.BuildPaid(caller, amount, a.clock()))
	a.logOperation(operationWithdraw, logAttrIdentity, caller, logAttrAmount, amount)

	return amount, nil
}
