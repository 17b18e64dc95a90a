package out

import (
	"context"
	"errors"
	"time"

	"jobtrack_server/core/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by lookups that matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrLedgerConflict is returned when two writers race on the same
	// (owner, message id) despite the scan lock. Treated as "already
	// processed" by the orchestrator, a safe no-op.
	ErrLedgerConflict = errors.New("ledger entry already exists")
)

// ApplicationRepository persists tracked applications. All mutations go
// through the state machine; the engine never deletes records.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Application, error)

	// GetByIdentity looks up the (owner, normalized company, normalized
	// position) identity key. Returns ErrNotFound when absent.
	GetByIdentity(ctx context.Context, userID uuid.UUID, company, position string) (*domain.Application, error)

	// ListOpenByCompany returns the owner's non-terminal applications whose
	// normalized company matches. Used by the single-candidate fallback.
	ListOpenByCompany(ctx context.Context, userID uuid.UUID, company string) ([]*domain.Application, error)

	// ListCompanies returns the owner's distinct company names, for the
	// known-company subject cross-reference.
	ListCompanies(ctx context.Context, userID uuid.UUID) ([]string, error)

	Create(ctx context.Context, app *domain.Application) error
	Update(ctx context.Context, app *domain.Application) error

	// Touch refreshes last-updated without a status change (duplicate
	// NewApplication for an existing identity).
	Touch(ctx context.Context, id int64, at time.Time) error
}

// LedgerRepository is the append-only import ledger.
type LedgerRepository interface {
	// Exists reports whether (owner, message id) was already processed.
	Exists(ctx context.Context, userID uuid.UUID, messageID string) (bool, error)

	// Append inserts exactly one entry; a unique violation surfaces as
	// ErrLedgerConflict.
	Append(ctx context.Context, entry *domain.ImportLedgerEntry) error

	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ContactRepository persists extracted contacts, deduplicated by
// (owner, email).
type ContactRepository interface {
	GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*domain.Contact, error)

	// Upsert creates the contact or, when (owner, email) exists, refreshes
	// LastContactAt and fills any previously empty fields.
	Upsert(ctx context.Context, contact *domain.Contact) (created bool, err error)
}

// ScanReportRepository keeps scan history for auditability.
type ScanReportRepository interface {
	Save(ctx context.Context, report *domain.ScanReport) error
	Latest(ctx context.Context, userID uuid.UUID) (*domain.ScanReport, error)
}

// TxManager scopes repository calls to one database transaction. The
// orchestrator wraps each message's ledger append and application mutation
// in a single transaction so neither lands without the other.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
