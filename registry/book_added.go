package registry

import (
	"time"
)

// BookAddedNotificationType is the notification type identifier.
const BookAddedNotificationType = "BookAdded"

// BookAdded represents when a librarian registers a new book.
type BookAdded struct {
	Key             BookKey
	Title           string
	Author          string
	PublishedDate   uint
	OriginLibrarian Identity
	OccurredAt      OccurredAtTS
}

// BuildBookAdded creates a new BookAdded notification.
func BuildBookAdded(
	key BookKey,
	title string,
	author string,
	publishedDate uint,
	originLibrarian Identity,
	occurredAt time.Time,
) BookAdded {

	return BookAdded{
		Key:             key,
		Title:           title,
		Author:          author,
		PublishedDate:   publishedDate,
		OriginLibrarian: originLibrarian,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookAdded) NotificationType() string {
	return BookAddedNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookAdded) HasOccurredAt() time.Time {
	return n.OccurredAt
}
