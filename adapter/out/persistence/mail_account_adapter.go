package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

// MailAccountRepository stores one connected mailbox per owner, with
// the OAuth token flattened into columns.
type MailAccountRepository struct {
	db *sqlx.DB
}

func NewMailAccountRepository(db *sqlx.DB) out.MailAccountRepository {
	return &MailAccountRepository{db: db}
}

const mailAccountColumns = `
	user_id, email, access_token, refresh_token, token_expiry,
	sync_enabled, last_synced_at`

func (r *MailAccountRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*out.MailAccount, error) {
	query := `SELECT` + mailAccountColumns + `
		FROM mail_accounts
		WHERE user_id = $1`

	var row mailAccountRow
	if err := ext(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, fmt.Errorf("get mail account: %w", err)
	}
	return row.toDomain(), nil
}

func (r *MailAccountRepository) Save(ctx context.Context, account *out.MailAccount) error {
	query := `
		INSERT INTO mail_accounts (
			user_id, email, access_token, refresh_token, token_expiry,
			sync_enabled, last_synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			sync_enabled = EXCLUDED.sync_enabled`

	var accessToken, refreshToken string
	var expiry *time.Time
	if account.Token != nil {
		accessToken = account.Token.AccessToken
		refreshToken = account.Token.RefreshToken
		if !account.Token.Expiry.IsZero() {
			expiry = &account.Token.Expiry
		}
	}

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		account.UserID, account.Email, accessToken, refreshToken, expiry,
		account.SyncEnabled, account.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("save mail account: %w", err)
	}
	return nil
}

func (r *MailAccountRepository) UpdateLastSynced(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := ext(ctx, r.db).ExecContext(ctx,
		"UPDATE mail_accounts SET last_synced_at = $2 WHERE user_id = $1", userID, at)
	if err != nil {
		return fmt.Errorf("update last synced: %w", err)
	}
	return nil
}

func (r *MailAccountRepository) ListSyncEnabled(ctx context.Context) ([]*out.MailAccount, error) {
	query := `SELECT` + mailAccountColumns + `
		FROM mail_accounts
		WHERE sync_enabled = TRUE
		ORDER BY last_synced_at NULLS FIRST`

	var rows []mailAccountRow
	if err := ext(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list sync-enabled accounts: %w", err)
	}

	accounts := make([]*out.MailAccount, len(rows))
	for i, row := range rows {
		accounts[i] = row.toDomain()
	}
	return accounts, nil
}

type mailAccountRow struct {
	UserID       uuid.UUID      `db:"user_id"`
	Email        string         `db:"email"`
	AccessToken  sql.NullString `db:"access_token"`
	RefreshToken sql.NullString `db:"refresh_token"`
	TokenExpiry  sql.NullTime   `db:"token_expiry"`
	SyncEnabled  bool           `db:"sync_enabled"`
	LastSyncedAt sql.NullTime   `db:"last_synced_at"`
}

func (r *mailAccountRow) toDomain() *out.MailAccount {
	account := &out.MailAccount{
		UserID:      r.UserID,
		Email:       r.Email,
		SyncEnabled: r.SyncEnabled,
	}
	if r.AccessToken.Valid || r.RefreshToken.Valid {
		account.Token = &oauth2.Token{
			AccessToken:  r.AccessToken.String,
			RefreshToken: r.RefreshToken.String,
			TokenType:    "Bearer",
		}
		if r.TokenExpiry.Valid {
			account.Token.Expiry = r.TokenExpiry.Time
		}
	}
	if r.LastSyncedAt.Valid {
		account.LastSyncedAt = &r.LastSyncedAt.Time
	}
	return account
}
