package registry

import (
	"time"
)

// OperatingStatusChangedNotificationType is the notification type identifier.
const OperatingStatusChangedNotificationType = "OperatingStatusChanged"

// OperatingStatusChanged represents when the owner flips the operational circuit breaker.
type OperatingStatusChanged struct {
	Operational bool
	OccurredAt  OccurredAtTS
}

// BuildOperatingStatusChanged creates a new OperatingStatusChanged notification.
func BuildOperatingStatusChanged(operational bool, occurredAt time.Time) OperatingStatusChanged {
	return OperatingStatusChanged{
		Operational: operational,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n OperatingStatusChanged) NotificationType() string {
	return OperatingStatusChangedNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n OperatingStatusChanged) HasOccurredAt() time.Time {
	return n.OccurredAt
}
