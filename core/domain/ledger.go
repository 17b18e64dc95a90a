package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportLedgerEntry records that one provider message was processed for
// one owner. Append-only; exactly one entry per (owner, message id), so a
// message is never classified twice.
type ImportLedgerEntry struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MessageID string    `json:"message_id"`

	EventType  EventType `json:"event_type"`
	Confidence float64   `json:"confidence"`
	RuleID     string    `json:"rule_id"`
	Signals    []string  `json:"signals,omitempty"`

	// Application the event was applied to, when resolution succeeded
	ApplicationID *int64 `json:"application_id,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}
