package persistence

import (
	"context"
	"fmt"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// LedgerRepository implements the append-only import ledger. The
// unique index on (user_id, message_id) is the dedup guarantee; a
// violation surfaces as out.ErrLedgerConflict and the orchestrator
// treats the message as already processed.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) out.LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Exists(ctx context.Context, userID uuid.UUID, messageID string) (bool, error) {
	var exists bool
	err := ext(ctx, r.db).GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM import_ledger WHERE user_id = $1 AND message_id = $2)",
		userID, messageID)
	if err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return exists, nil
}

func (r *LedgerRepository) Append(ctx context.Context, entry *domain.ImportLedgerEntry) error {
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO import_ledger (
			user_id, message_id, event_type, confidence, rule_id,
			signals, application_id, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := ext(ctx, r.db).GetContext(ctx, &entry.ID, query,
		entry.UserID, entry.MessageID, entry.EventType, entry.Confidence,
		entry.RuleID, pq.Array(entry.Signals), entry.ApplicationID,
		entry.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return out.ErrLedgerConflict
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := ext(ctx, r.db).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM import_ledger WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}
