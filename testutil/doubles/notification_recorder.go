package doubles

import (
	"context"
	"sync"

	"github.com/openshelf/library-registry/registry"
)

// NotificationRecorder implements registry.Notifier and records every
// emitted notification for later assertions.
type NotificationRecorder struct {
	mu       sync.Mutex
	recorded registry.Notifications
}

// NewNotificationRecorder creates an empty recorder.
func NewNotificationRecorder() *NotificationRecorder {
	return &NotificationRecorder{}
}

// Emit records the notification.
func (r *NotificationRecorder) Emit(_ context.Context, notification registry.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recorded = append(r.recorded, notification)
}

// All returns a copy of everything recorded so far.
func (r *NotificationRecorder) All() registry.Notifications {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(registry.Notifications, len(r.recorded))
	copy(out, r.recorded)

	return out
}

// OfType returns all recorded notifications with the given type identifier.
func (r *NotificationRecorder) OfType(notificationType string) registry.Notifications {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out registry.Notifications
	for _, n := range r.recorded {
		if n.NotificationType() == notificationType {
			out = append(out, n)
		}
	}

	return out
}

// Last returns the most recently recorded notification, or nil.
func (r *NotificationRecorder) Last() registry.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.recorded) == 0 {
		return nil
	}

	return r.recorded[len(r.recorded)-1]
}

// Reset clears everything recorded so far.
func (r *NotificationRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recorded = nil
}

// Ensure NotificationRecorder implements registry.Notifier.
var _ registry.Notifier = (*NotificationRecorder)(nil)
