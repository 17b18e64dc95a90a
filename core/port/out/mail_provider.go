// Package out defines outbound ports (driven ports) for the engine.
package out

import (
	"context"
	"errors"
	"time"

	"jobtrack_server/core/domain"

	"golang.org/x/oauth2"
)

// Sentinel errors surfaced by mail provider adapters.
var (
	// ErrRateLimited means the provider throttled us mid-window. The
	// orchestrator aborts the rest of the scan and reports it partial.
	ErrRateLimited = errors.New("mail provider rate limited")

	// ErrProviderUnavailable means the provider could not be reached at
	// all; the scan aborts as incomplete.
	ErrProviderUnavailable = errors.New("mail provider unavailable")
)

// FetchOptions bounds one scan window.
type FetchOptions struct {
	After      time.Time // only messages received after this instant
	MaxResults int       // page-size bound, provider enforced
	Query      string    // optional provider-side search narrowing
}

// MailProvider is the outbound port for the user's mailbox. The adapter
// owns pagination, rate limiting, and OAuth token refresh; the engine only
// sees an ordered batch of raw messages.
type MailProvider interface {
	// FetchWindow returns messages in provider order, oldest first.
	// Partial results with ErrRateLimited are valid: the orchestrator
	// processes what arrived before aborting the window.
	FetchWindow(ctx context.Context, token *oauth2.Token, opts *FetchOptions) ([]*domain.RawMessage, error)

	ProviderName() string
}
