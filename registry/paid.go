package registry

import (
	"time"
)

// PaidNotificationType is the notification type identifier.
const PaidNotificationType = "Paid"

// Paid represents when an accrued balance was withdrawn and settled.
type Paid struct {
	Recipient  Identity
	Amount     Amount
	OccurredAt OccurredAtTS
}

// BuildPaid creates a new Paid notification.
func BuildPaid(recipient Identity, amount Amount, occurredAt time.Time) Paid {
	return Paid{
		Recipient:  recipient,
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// NotificationType returns the notification type identifier.
func (n Paid) NotificationType() string {
	return PaidNotificationType
}

// HasOccurredAt returns when this notification occurred.
func (n Paid) HasOccurredAt() time.Time {
	return n.OccurredAt
}
