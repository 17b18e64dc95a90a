package http

import (
	"context"
	"time"

	"jobtrack_server/core/port/out"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const oauthStateTTL = 10 * time.Minute

// OAuthProvider is the part of the mail provider adapter the connect
// flow needs.
type OAuthProvider interface {
	GetAuthURL(state string) string
	ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error)
	ProfileEmail(ctx context.Context, token *oauth2.Token) (string, error)
}

// StateStore holds single-use OAuth states between the consent
// redirect and the callback.
type StateStore interface {
	StoreState(ctx context.Context, state string, userID uuid.UUID, ttl time.Duration) error
	ValidateState(ctx context.Context, state string) (uuid.UUID, error)
}

// MailHandler connects and inspects the owner's mailbox.
type MailHandler struct {
	provider OAuthProvider
	accounts out.MailAccountRepository
	states   StateStore
}

func NewMailHandler(provider OAuthProvider, accounts out.MailAccountRepository, states StateStore) *MailHandler {
	return &MailHandler{provider: provider, accounts: accounts, states: states}
}

// Register mounts the authenticated mailbox routes. Callback is mounted
// separately without auth because the provider redirects the browser
// there without a bearer token.
func (h *MailHandler) Register(api fiber.Router) {
	api.Get("/mail/connect", h.Connect)
	api.Get("/mail/account", h.Account)
	api.Patch("/mail/account", h.UpdateAccount)
}

// Connect starts the OAuth consent flow and returns the redirect URL.
func (h *MailHandler) Connect(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	state := uuid.NewString()
	if err := h.states.StoreState(c.Context(), state, userID, oauthStateTTL); err != nil {
		return AppErrorResponse(c, err)
	}

	return SuccessResponse(c, fiber.Map{
		"auth_url": h.provider.GetAuthURL(state),
	})
}

// Callback finishes the consent flow: validates the state, exchanges
// the code, and saves the mailbox connection.
func (h *MailHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return ErrorResponse(c, fiber.StatusBadRequest, "missing state or code")
	}

	userID, err := h.states.ValidateState(c.Context(), state)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "invalid or expired state")
	}

	token, err := h.provider.ExchangeToken(c.Context(), code)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	email, err := h.provider.ProfileEmail(c.Context(), token)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	account := &out.MailAccount{
		UserID:      userID,
		Email:       email,
		Token:       token,
		SyncEnabled: true,
	}
	if err := h.accounts.Save(c.Context(), account); err != nil {
		return AppErrorResponse(c, err)
	}

	return SuccessResponse(c, fiber.Map{"connected": true})
}

func (h *MailHandler) Account(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	account, err := h.accounts.GetByUser(c.Context(), userID)
	if err != nil {
		return ErrorResponse(c, fiber.StatusNotFound, "no connected mailbox")
	}

	// Token never leaves the server.
	return SuccessResponse(c, fiber.Map{
		"email":          account.Email,
		"sync_enabled":   account.SyncEnabled,
		"last_synced_at": account.LastSyncedAt,
	})
}

type updateAccountRequest struct {
	SyncEnabled *bool `json:"sync_enabled"`
}

// UpdateAccount toggles background sync for the connected mailbox.
func (h *MailHandler) UpdateAccount(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body updateAccountRequest
	if err := c.BodyParser(&body); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.SyncEnabled == nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "sync_enabled is required")
	}

	account, err := h.accounts.GetByUser(c.Context(), userID)
	if err != nil {
		return ErrorResponse(c, fiber.StatusNotFound, "no connected mailbox")
	}

	account.SyncEnabled = *body.SyncEnabled
	if err := h.accounts.Save(c.Context(), account); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"sync_enabled": account.SyncEnabled})
}
