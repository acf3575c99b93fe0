package registry

import (
	"time"
)

// BookCheckedInNotificationType is the notification type identifier.
const BookCheckedInNotificationType = "BookCheckedIn"

// BookCheckedIn represents when a borrowed book returns to its origin librarian.
type BookCheckedIn struct {
	Key        BookKey
	ReturnedTo Identity
	OccurredAt OccurredAtTS
}

// BuildBookCheckedIn creates a new BookCheckedIn notification.
func BuildBookCheckedIn(key BookKey, returnedTo Identity, occurredAt time.Time) BookCheckedIn {
	return BookCheckedIn{
		Key:        key,
		ReturnedTo: returnedTo,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n BookCheckedIn) NotificationType() string {
	return BookCheckedInNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n BookCheckedIn) HasOccurredAt() time.Time {
	return n.OccurredAt
}
