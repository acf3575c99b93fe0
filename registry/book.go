package registry

// Transfer is one entry of a book's append-only transfer history.
// A transfer is recorded on every checkout and every checkin, and when a
// book is listed for sale with condition notes.
type Transfer struct {
	From  Identity
	Notes NotesString
}

// Transfers is a book's transfer history in chronological order.
type Transfers = []Transfer

// Book is the canonical record of a registered book.
//
// CheckedOut true implies CurrentOwner is the borrower, not OriginLibrarian.
// PriceForSale zero means "not listed".
type Book struct {
	Key             BookKey
	OriginLibrarian Identity
	CurrentOwner    Identity
	CheckedOut      bool
	PriceForSale    Amount
	TransferCount   int
}
