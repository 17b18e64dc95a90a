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

// ContactRepository implements out.ContactRepository on Postgres.
type ContactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) out.ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) GetByEmail(ctx context.Context, userID uuid.UUID, email string) (*domain.Contact, error) {
	query := `
		SELECT id, user_id, name, email, company, application_id,
		       first_seen_at, last_contact_at
		FROM contacts
		WHERE user_id = $1 AND email = $2`

	var row contactRow
	if err := ext(ctx, r.db).GetContext(ctx, &row, query, userID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return row.toDomain(), nil
}

// Upsert inserts the contact or, on an (owner, email) conflict,
// refreshes last_contact_at and fills fields that were empty. Reports
// whether a new row was created.
func (r *ContactRepository) Upsert(ctx context.Context, contact *domain.Contact) (bool, error) {
	query := `
		INSERT INTO contacts (
			user_id, name, email, company, application_id,
			first_seen_at, last_contact_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, email) DO UPDATE SET
			last_contact_at = EXCLUDED.last_contact_at,
			name = CASE WHEN contacts.name = '' THEN EXCLUDED.name ELSE contacts.name END,
			company = CASE WHEN contacts.company = '' THEN EXCLUDED.company ELSE contacts.company END,
			application_id = COALESCE(contacts.application_id, EXCLUDED.application_id)
		RETURNING id, (xmax = 0) AS inserted`

	var result struct {
		ID       int64 `db:"id"`
		Inserted bool  `db:"inserted"`
	}
	err := ext(ctx, r.db).GetContext(ctx, &result, query,
		contact.UserID, contact.Name, contact.Email, contact.Company,
		contact.ApplicationID, contact.FirstSeenAt, contact.LastContactAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert contact: %w", err)
	}
	contact.ID = result.ID
	return result.Inserted, nil
}

type contactRow struct {
	ID            int64         `db:"id"`
	UserID        uuid.UUID     `db:"user_id"`
	Name          string        `db:"name"`
	Email         string        `db:"email"`
	Company       string        `db:"company"`
	ApplicationID sql.NullInt64 `db:"application_id"`
	FirstSeenAt   time.Time     `db:"first_seen_at"`
	LastContactAt time.Time     `db:"last_contact_at"`
}

func (r *contactRow) toDomain() *domain.Contact {
	c := &domain.Contact{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Email:         r.Email,
		Company:       r.Company,
		FirstSeenAt:   r.FirstSeenAt,
		LastContactAt: r.LastContactAt,
	}
	if r.ApplicationID.Valid {
		c.ApplicationID = &r.ApplicationID.Int64
	}
	return c
}
