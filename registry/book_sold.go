package registry

import (
	"time"
)

// BookSoldNotificationType is the notification type identifier.
const BookSoldNotificationType = "BookSold"

// BookSold represents when a buyer purchases a listed book at its exact price.
type BookSold struct {
	Key        BookKey
	Title      string
	Price      Amount
	Buyer      Identity
	OccurredAt OccurredAtTS
}

// BuildBookSold creates a new BookSold notification.
func BuildBookSold(key BookKey, title string, price Amount, buyer Identity, occurredAt time.Time) BookSold {
	return BookSold{
		Key:        key,
		Title:      title,
		Price:      price,
		Buyer:      buyer,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookSold) NotificationType() string {
	return BookSoldNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookSold) HasOccurredAt() time.Time {
	return n.OccurredAt
}
