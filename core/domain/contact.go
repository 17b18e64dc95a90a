package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a person extracted from a personal (non-automated) response.
// Deduplicated by (owner, email); later sightings refresh LastContactAt
// instead of creating a second record.
type Contact struct {
	ID      int64     `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`

	// Application the contact was first seen on
	ApplicationID *int64 `json:"application_id,omitempty"`

	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastContactAt time.Time `json:"last_contact_at"`
}
