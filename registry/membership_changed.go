package registry

import (
	"time"
)

// MembershipChangedNotificationType is the notification type identifier.
const MembershipChangedNotificationType = "MembershipChanged"

// MembershipChanged represents when an identity is granted or revoked librarian rights.
// It carries the resulting membership state, so an idempotent no-op change
// still reports the effective value.
type MembershipChanged struct {
	Librarian  Identity
	Active     bool
	OccurredAt OccurredAtTS
}

// BuildMembershipChanged creates a new MembershipChanged notification.
func BuildMembershipChanged(librarian Identity, active bool, occurredAt time.Time) MembershipChanged {
	return MembershipChanged{
		Librarian:  librarian,
		Active:     active,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n MembershipChanged) NotificationType() string {
	return MembershipChangedNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n MembershipChanged) HasOccurredAt() time.Time {
	return n.OccurredAt
}
