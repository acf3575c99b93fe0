package application

import (
	"context"
	"errors"

	"github.com/openshelf/library-registry/registry"
	"github.com/openshelf/library-registry/registrystore"
)

// BookView is the read-only aggregate view of a registered book, combining
// the stored record with convenience fields about its latest transfer.
type BookView struct {
	Key             registry.BookKey
	Title           string
	Author          string
	PublishedDate   uint
	OriginLibrarian registry.Identity
	CurrentOwner    registry.Identity
	CheckedOut      bool
	PriceForSale    registry.Amount

	TransferCount     int
	LastTransferFrom  registry.Identity
	LastTransferNotes registry.NotesString
}

// GetTransferHistory returns the whole transfer ledger of a book in
// chronological order; registrystore.ErrNotFound if absent.
func (a *Application) GetTransferHistory(
	ctx context.Context,
	title string,
	author string,
	publishedDate uint,
) (registry.Transfers, error) {
	return a.store.GetTransfers(ctx, registry.NewBookKey(title, author, publishedDate))
}

// GetBook returns the aggregate view for a book addressed by its natural
// identity; registrystore.ErrNotFound if absent.
func (a *Application) GetBook(
	ctx context.Context,
	title string,
	author string,
	publishedDate uint,
) (BookView, error) {
	key := registry.NewBookKey(title, author, publishedDate)

	book, err := a.store.GetBook(ctx, key)
	if err != nil {
		return BookView{}, err
	}

	view := BookView{
		Key:             book.Key,
		Title:           title,
		Author:          author,
		PublishedDate:   publishedDate,
		OriginLibrarian: book.OriginLibrarian,
		CurrentOwner:    book.CurrentOwner,
		CheckedOut:      book.CheckedOut,
		PriceForSale:    book.PriceForSale,
		TransferCount:   book.TransferCount,
	}

	if book.TransferCount > 0 {
		lastTransfer, transferErr := a.store.GetTransfer(ctx, key, book.TransferCount-1)
		if transferErr != nil {
			// The book vanishing between the two reads maps to not found;
			// an out-of-range index after a concurrent delete-and-reinsert
			// just leaves the convenience fields empty.
			if errors.Is(transferErr, registrystore.ErrTransferNotFound) {
				return view, nil
			}

			return BookView{}, transferErr
		}

		view.LastTransferFrom = lastTransfer.From
		view.LastTransferNotes = lastTransfer.Notes
	}

	return view, nil
}
