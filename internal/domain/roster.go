package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity identifies a student eligible for recognition.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// RosterEntry pairs an identity with its stored reference descriptor for one
// lesson's roster. Entries without a descriptor are carried but excluded from
// matching. The roster is read-only for the recognition core.
type RosterEntry struct {
	Identity   Identity   `json:"identity"`
	Descriptor Descriptor `json:"-"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasDescriptor reports whether the entry can participate in matching.
func (e *RosterEntry) HasDescriptor() bool {
	return len(e.Descriptor) > 0
}
