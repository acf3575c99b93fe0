package registry

import (
	"time"
)

// BookCheckedOutNotificationType is the notification type identifier.
const BookCheckedOutNotificationType = "BookCheckedOut"

// BookCheckedOut represents when a librarian hands a book to a borrower.
type BookCheckedOut struct {
	Key        BookKey
	Borrower   Identity
	OccurredAt OccurredAtTS
}

// BuildBookCheckedOut creates a new BookCheckedOut notification.
func BuildBookCheckedOut(key BookKey, borrower Identity, occurredAt time.Time) BookCheckedOut {
	return BookCheckedOut{
		Key:        key,
		Borrower:   borrower,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookCheckedOut) NotificationType() string {
	return BookCheckedOutNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookCheckedOut) HasOccurredAt() time.Time {
	return n.OccurredAt
}
