package registry

import (
	"time"
)

// BookPutOnSaleNotificationType is the notification type identifier.
const BookPutOnSaleNotificationType = "BookPutOnSale"

// BookPutOnSale represents when the current owner lists a book for sale.
// A zero price means the book was delisted through the same operation.
type BookPutOnSale struct {
	Key        BookKey
	Title      string
	Price      Amount
	OccurredAt OccurredAtTS
}

// BuildBookPutOnSale creates a new BookPutOnSale notification.
func BuildBookPutOnSale(key BookKey, title string, price Amount, occurredAt time.Time) BookPutOnSale {
	return BookPutOnSale{
		Key:        key,
		Title:      title,
		Price:      price,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookPutOnSale) NotificationType() string {
	return BookPutOnSaleNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookPutOnSale) HasOccurredAt() time.Time {
	return n.OccurredAt
}
