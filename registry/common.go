package registry

import (
	"time"

	"github.com/google/uuid"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// Identity represents an attributed caller or account in the registry.
// The execution boundary guarantees identities are unforgeable; this type
// only carries them around.
type Identity = string

// Amount represents a non-negative monetary amount in the smallest unit.
type Amount = uint64

// NotesString represents the free-form condition notes attached to a transfer.
type NotesString = string

// OccurredAtTS represents when a notification occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// NewIdentity generates a fresh random identity.
func NewIdentity() Identity {
	return uuid.New().String()
}
