package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// MailAccount is an owner's connected mailbox: the address, the OAuth
// token the provider adapter refreshes, and the sync schedule state.
type MailAccount struct {
	UserID       uuid.UUID
	Email        string
	Token        *oauth2.Token
	SyncEnabled  bool
	LastSyncedAt *time.Time
}

// MailAccountRepository stores mailbox connections.
type MailAccountRepository interface {
	// GetByUser returns ErrNotFound when the owner has no connected mailbox.
	GetByUser(ctx context.Context, userID uuid.UUID) (*MailAccount, error)

	Save(ctx context.Context, account *MailAccount) error

	UpdateLastSynced(ctx context.Context, userID uuid.UUID, at time.Time) error

	// ListSyncEnabled feeds the background scan worker.
	ListSyncEnabled(ctx context.Context) ([]*MailAccount, error)
}
