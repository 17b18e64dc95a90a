package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScanReportRepository keeps scan history. Transitions and unresolved
// events land as JSONB; they are read back whole, never queried into.
type ScanReportRepository struct {
	db *sqlx.DB
}

func NewScanReportRepository(db *sqlx.DB) out.ScanReportRepository {
	return &ScanReportRepository{db: db}
}

func (r *ScanReportRepository) Save(ctx context.Context, report *domain.ScanReport) error {
	transitions, err := json.Marshal(report.Transitions)
	if err != nil {
		return fmt.Errorf("marshal transitions: %w", err)
	}
	unresolved, err := json.Marshal(report.UnresolvedEvents)
	if err != nil {
		return fmt.Errorf("marshal unresolved events: %w", err)
	}

	query := `
		INSERT INTO scan_reports (
			user_id, status, fetched, imported, transitioned, unresolved,
			skipped_duplicate, skipped_unrelated, errors, contacts_added,
			transitions, unresolved_events, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = ext(ctx, r.db).ExecContext(ctx, query,
		report.UserID, report.Status, report.Fetched, report.Imported,
		report.Transitioned, report.Unresolved, report.SkippedDuplicate,
		report.SkippedUnrelated, report.Errors, report.ContactsAdded,
		transitions, unresolved, report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save scan report: %w", err)
	}
	return nil
}

func (r *ScanReportRepository) Latest(ctx context.Context, userID uuid.UUID) (*domain.ScanReport, error) {
	query := `
		SELECT user_id, status, fetched, imported, transitioned, unresolved,
		       skipped_duplicate, skipped_unrelated, errors, contacts_added,
		       transitions, unresolved_events, started_at, finished_at
		FROM scan_reports
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT 1`

	var row scanReportRow
	if err := ext(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("latest scan report: %w", err)
	}
	return row.toDomain()
}

type scanReportRow struct {
	UserID           uuid.UUID `db:"user_id"`
	Status           string    `db:"status"`
	Fetched          int       `db:"fetched"`
	Imported         int       `db:"imported"`
	Transitioned     int       `db:"transitioned"`
	Unresolved       int       `db:"unresolved"`
	SkippedDuplicate int       `db:"skipped_duplicate"`
	SkippedUnrelated int       `db:"skipped_unrelated"`
	Errors           int       `db:"errors"`
	ContactsAdded    int       `db:"contacts_added"`
	Transitions      []byte    `db:"transitions"`
	UnresolvedEvents []byte    `db:"unresolved_events"`
	StartedAt        time.Time `db:"started_at"`
	FinishedAt       time.Time `db:"finished_at"`
}

func (r *scanReportRow) toDomain() (*domain.ScanReport, error) {
	report := &domain.ScanReport{
		UserID:           r.UserID,
		Status:           domain.ScanStatus(r.Status),
		Fetched:          r.Fetched,
		Imported:         r.Imported,
		Transitioned:     r.Transitioned,
		Unresolved:       r.Unresolved,
		SkippedDuplicate: r.SkippedDuplicate,
		SkippedUnrelated: r.SkippedUnrelated,
		Errors:           r.Errors,
		ContactsAdded:    r.ContactsAdded,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
	}
	if len(r.Transitions) > 0 {
		if err := json.Unmarshal(r.Transitions, &report.Transitions); err != nil {
			return nil, fmt.Errorf("unmarshal transitions: %w", err)
		}
	}
	if len(r.UnresolvedEvents) > 0 {
		if err := json.Unmarshal(r.UnresolvedEvents, &report.UnresolvedEvents); err != nil {
			return nil, fmt.Errorf("unmarshal unresolved events: %w", err)
		}
	}
	return report, nil
}
