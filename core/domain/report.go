package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanStatus is the outcome of one bounded scan.
type ScanStatus string

const (
	ScanComplete ScanStatus = "complete"
	ScanPartial  ScanStatus = "partial" // provider rate-limited mid-window; commits preserved
)

// Transition records one application status change applied during a scan.
type Transition struct {
	ApplicationID int64             `json:"application_id"`
	Company       string            `json:"company"`
	Position      string            `json:"position"`
	From          ApplicationStatus `json:"from,omitempty"`
	To            ApplicationStatus `json:"to"`
	EventType     EventType         `json:"event_type"`
	MessageID     string            `json:"message_id"`

	// The application's last status change was a manual edit newer than
	// the email; the transition applied anyway and is surfaced here.
	OverridesManualEdit bool `json:"overrides_manual_edit,omitempty"`

	// Event hit a terminal-status application and was recorded as a no-op
	NoOp bool `json:"no_op,omitempty"`
}

// UnresolvedEvent is an actionable classification that matched zero or
// several candidate applications ambiguously. No record was mutated;
// the user reviews these manually.
type UnresolvedEvent struct {
	MessageID  string    `json:"message_id"`
	EventType  EventType `json:"event_type"`
	Company    string    `json:"company,omitempty"`
	Position   string    `json:"position,omitempty"`
	Subject    string    `json:"subject"`
	FromEmail  string    `json:"from_email"`
	ReceivedAt time.Time `json:"received_at"`
	Candidates int       `json:"candidates"` // 0 = no match, >1 = ambiguous
}

// ScanReport aggregates one scan's outcome.
type ScanReport struct {
	UserID uuid.UUID  `json:"user_id"`
	Status ScanStatus `json:"status"`

	Fetched          int `json:"fetched"`
	Imported         int `json:"imported"`    // applications created
	Transitioned     int `json:"transitioned"` // status changes applied
	Unresolved       int `json:"unresolved"`
	SkippedDuplicate int `json:"skipped_duplicate"` // already in the ledger
	SkippedUnrelated int `json:"skipped_unrelated"`
	Errors           int `json:"errors"` // malformed or failed commits

	ContactsAdded int `json:"contacts_added"`

	Transitions      []Transition      `json:"transitions,omitempty"`
	UnresolvedEvents []UnresolvedEvent `json:"unresolved_events,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
