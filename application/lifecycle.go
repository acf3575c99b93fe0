package application

import (
	"context"

	"github.com/openshelf/library-registry/registry"
)

// InsertBook registers a new physical book and returns its derived key.
// Librarian-only; the caller becomes the origin librarian and initial owner.
// Re-adding a previously deleted book is permitted and starts a fresh,
// empty transfer history.
func (a *Application) InsertBook(
	ctx context.Context,
	caller registry.Identity,
	title string,
	author string,
	publishedDate uint,
) (registry.BookKey, error) {
	if err := a.requireLibrarian(ctx, caller); err != nil {
		return "", err
	}

	key := registry.NewBookKey(title, author, publishedDate)

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		return a.store.InsertBook(retryCtx, a.self, key, caller)
	})
	if err != nil {
		return "", err
	}

	a.emit(ctx, registry.BuildBookAdded(key, title, author, publishedDate, caller, a.clock()))
	a.logOperation(operationInsertBook, logAttrBookKey, key)

	return key, nil
}

// DeleteBook removes a book and its transfer history. Librarian-only.
// Fails with ErrConflict while the book is checked out.
func (a *Application) DeleteBook(
	ctx context.Context,
	caller registry.Identity,
	title string,
	author string,
	publishedDate uint,
) error {
	if err := a.requireLibrarian(ctx, caller); err != nil {
		return err
	}

	key := registry.NewBookKey(title, author, publishedDate)

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		return a.store.DeleteBook(retryCtx, a.self, key)
	})
	if err != nil {
		return err
	}

	a.emit(ctx, registry.BuildBookDeleted(key, title, author, publishedDate, a.clock()))
	a.logOperation(operationDeleteBook, logAttrBookKey, key)

	return nil
}

// CheckOutBook lends an available book to a borrower. Librarian-only.
// The transfer entry records the lending librarian and the condition notes;
// the borrower becomes the current owner for the duration of the loan.
func (a *Application) CheckOutBook(
	ctx context.Context,
	caller registry.Identity,
	borrower registry.Identity,
	title string,
	author string,
	publishedDate uint,
	notes registry.NotesString,
) error {
	if err := a.requireLibrarian(ctx, caller); err != nil {
		return err
	}

	key := registry.NewBookKey(title, author, publishedDate)

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		book, readErr := a.store.GetBook(retryCtx, key)
		if readErr != nil {
			return readErr
		}

		if decideErr := decideCheckOut(book); decideErr != nil {
			return decideErr
		}

		return a.store.RecordTransfer(retryCtx, a.self, key, borrower, true, caller, notes)
	})
	if err != nil {
		return err
	}

	a.emit(ctx, registry.BuildBookCheckedOut(key, borrower, a.clock()))
	a.logOperation(operationCheckOutBook, logAttrBookKey, key, "borrower", borrower)

	return nil
}

// CheckInBook returns a lent book to its origin librarian. Open to any
// caller: the returning party need not be a librarian.
func (a *Application) CheckInBook(
	ctx context.Context,
	caller registry.Identity,
	title string,
	author string,
	publishedDate uint,
	notes registry.NotesString,
) error {
	key := registry.NewBookKey(title, author, publishedDate)

	var returnedTo registry.Identity

	err := a.withRetry(ctx, func(retryCtx context.Context) error {
		book, readErr := a.store.GetBook(retryCtx, key)
		if readErr != nil {
			return readErr
		}

		if decideErr := decideCheckIn(book); decideErr != nil {
			return decideErr
		}

		returnedTo = book.OriginLibrarian

		return a.store.RecordTransfer(retryCtx, a.self, key, book.OriginLibrarian, false, caller, notes)
	})
	if err != nil {
		return err
	}

	a.emit(ctx, registry.BuildBookCheckedIn(key, returnedTo, a.clock()))
	a.logOperation(operationCheckInBook, logAttrBookKey, key)

	return nil
}
