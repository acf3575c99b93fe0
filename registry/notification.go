package registry

import (
	"context"
	"time"
)

// Notifications is a slice of Notification instances.
type Notifications = []Notification

// Notification represents a registry state change that observers can react to.
type Notification interface {
	// NotificationType returns the string identifier for this notification type.
	NotificationType() string

	// HasOccurredAt returns when this notification occurred.
	HasOccurredAt() time.Time
}

// Notifier receives notifications emitted by the store and the application.
// Implementations must not block the emitting call; delivery guarantees are
// whatever the implementation provides.
type Notifier interface {
	Emit(ctx context.Context, notification Notification)
}
