package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ApplicationRepository implements out.ApplicationRepository on
// Postgres. The normalized company and position columns back the
// identity unique index, so dedup holds even under concurrent writers.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) out.ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	id, user_id, company, position, status, source,
	last_status_source, status_changed_at, applied_at, notes,
	created_at, updated_at`

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE id = $1`

	var row applicationRow
	if err := ext(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ApplicationRepository) GetByIdentity(ctx context.Context, userID uuid.UUID, company, position string) (*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE user_id = $1 AND company_normalized = $2 AND position_normalized = $3`

	var row applicationRow
	err := ext(ctx, r.db).GetContext(ctx, &row, query,
		userID, domain.NormalizeCompany(company), domain.NormalizeTitle(position))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("get application by identity: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ApplicationRepository) ListOpenByCompany(ctx context.Context, userID uuid.UUID, company string) ([]*domain.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		WHERE user_id = $1 AND company_normalized = $2
		  AND status NOT IN ('rejected', 'withdrawn')
		ORDER BY applied_at DESC`

	var rows []applicationRow
	err := ext(ctx, r.db).SelectContext(ctx, &rows, query, userID, domain.NormalizeCompany(company))
	if err != nil {
		return nil, fmt.Errorf("list open applications: %w", err)
	}

	apps := make([]*domain.Application, len(rows))
	for i, row := range rows {
		apps[i] = row.toDomain()
	}
	return apps, nil
}

func (r *ApplicationRepository) ListCompanies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var companies []string
	err := ext(ctx, r.db).SelectContext(ctx, &companies,
		"SELECT DISTINCT company FROM applications WHERE user_id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	query := `
		INSERT INTO applications (
			user_id, company, position, company_normalized, position_normalized,
			status, source, last_status_source, status_changed_at,
			applied_at, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := ext(ctx, r.db).GetContext(ctx, &app.ID, query,
		app.UserID, app.Company, app.Position,
		domain.NormalizeCompany(app.Company), domain.NormalizeTitle(app.Position),
		app.Status, app.Source, app.LastStatusSource, app.StatusChangedAt,
		app.AppliedAt, app.Notes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	app.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE applications SET
			company = $2, position = $3,
			company_normalized = $4, position_normalized = $5,
			status = $6, source = $7, last_status_source = $8,
			status_changed_at = $9, applied_at = $10, notes = $11,
			updated_at = $12
		WHERE id = $1`

	res, err := ext(ctx, r.db).ExecContext(ctx, query,
		app.ID, app.Company, app.Position,
		domain.NormalizeCompany(app.Company), domain.NormalizeTitle(app.Position),
		app.Status, app.Source, app.LastStatusSource,
		app.StatusChangedAt, app.AppliedAt, app.Notes, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return out.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := ext(ctx, r.db).ExecContext(ctx,
		"UPDATE applications SET updated_at = $2 WHERE id = $1", id, at)
	if err != nil {
		return fmt.Errorf("touch application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return out.ErrNotFound
	}
	return nil
}

type applicationRow struct {
	ID               int64          `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	Company          string         `db:"company"`
	Position         string         `db:"position"`
	Status           string         `db:"status"`
	Source           string         `db:"source"`
	LastStatusSource string         `db:"last_status_source"`
	StatusChangedAt  time.Time      `db:"status_changed_at"`
	AppliedAt        time.Time      `db:"applied_at"`
	Notes            sql.NullString `db:"notes"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r *applicationRow) toDomain() *domain.Application {
	return &domain.Application{
		ID:               r.ID,
		UserID:           r.UserID,
		Company:          r.Company,
		Position:         r.Position,
		Status:           domain.ApplicationStatus(r.Status),
		Source:           domain.ApplicationSource(r.Source),
		LastStatusSource: domain.ApplicationSource(r.LastStatusSource),
		StatusChangedAt:  r.StatusChangedAt,
		AppliedAt:        r.AppliedAt,
		Notes:            r.Notes.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
