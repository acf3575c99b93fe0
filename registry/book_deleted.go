package registry

import (
	"time"
)

// BookDeletedNotificationType is the notification type identifier.
const BookDeletedNotificationType = "BookDeleted"

// BookDeleted represents when a librarian removes a book and its whole
// transfer history from the registry.
type BookDeleted struct {
	Key           BookKey
	Title         string
	Author        string
	PublishedDate uint
	OccurredAt    OccurredAtTS
}

// BuildBookDeleted creates a new BookDeleted notification.
func BuildBookDeleted(
	key BookKey,
	title string,
	author string,
	publishedDate uint,
	occurredAt time.Time,
) BookDeleted {

	return BookDeleted{
		Key:           key,
		Title:         title,
		Author:        author,
		PublishedDate: publishedDate,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookDeleted) NotificationType() string {
	return BookDeletedNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookDeleted) HasOccurredAt() time.Time {
	return n.OccurredAt
}
