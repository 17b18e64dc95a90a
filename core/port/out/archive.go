package out

import (
	"context"

	"jobtrack_server/core/domain"

	"github.com/google/uuid"
)

// UnresolvedEvidence is the message snapshot kept alongside an unresolved
// event so the user can review it without refetching the mailbox.
type UnresolvedEvidence struct {
	Event   domain.UnresolvedEvent `bson:"event"`
	Body    string                 `bson:"body"`
	RuleID  string                 `bson:"rule_id"`
	Signals []string               `bson:"signals,omitempty"`
}

// MessageArchive stores evidence for unresolved events. Best-effort: a
// failed archive write never fails the scan.
type MessageArchive interface {
	StoreUnresolved(ctx context.Context, userID uuid.UUID, evidence *UnresolvedEvidence) error
	ListUnresolved(ctx context.Context, userID uuid.UUID, limit int) ([]*UnresolvedEvidence, error)
}
