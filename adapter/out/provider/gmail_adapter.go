// Package provider implements mailbox adapters behind out.MailProvider.
package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"
	"jobtrack_server/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailConfig holds the OAuth client settings for Gmail.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GmailAdapter implements out.MailProvider for Gmail. Read-only scope:
// the engine never mutates the mailbox.
type GmailAdapter struct {
	config *oauth2.Config
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
}

func NewGmailAdapter(cfg *GmailConfig) *GmailAdapter {
	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}

	log := logger.Default().WithField("component", "gmail")

	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &GmailAdapter{
		config: config,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		log:    log,
	}
}

var _ out.MailProvider = (*GmailAdapter)(nil)

func (a *GmailAdapter) ProviderName() string {
	return "gmail"
}

// GetAuthURL returns the OAuth consent URL for connecting a mailbox.
func (a *GmailAdapter) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeToken exchanges an authorization code for a token.
func (a *GmailAdapter) ExchangeToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange token: %w", err)
	}
	return token, nil
}

// ProfileEmail returns the mailbox address the token grants access to.
func (a *GmailAdapter) ProfileEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := a.config.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("create gmail service: %w", err)
	}
	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", a.mapError(err, "get profile")
	}
	return profile.EmailAddress, nil
}

// FetchWindow lists message ids in the window, then fetches each full
// message with bounded concurrency. Returns oldest first. A 429 from
// Gmail surfaces as out.ErrRateLimited alongside whatever was fetched
// before the throttle.
func (a *GmailAdapter) FetchWindow(ctx context.Context, token *oauth2.Token, opts *out.FetchOptions) ([]*domain.RawMessage, error) {
	client := a.config.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	ids, err := a.listIDs(ctx, service, opts)
	if err != nil && len(ids) == 0 {
		return nil, err
	}
	listErr := err

	messages, fetchErr := a.fetchMessages(ctx, service, ids)

	// Gmail lists newest first; the pipeline wants provider order
	// oldest first so later messages supersede earlier ones.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.Before(messages[j].ReceivedAt)
	})

	if listErr != nil {
		return messages, listErr
	}
	return messages, fetchErr
}

func (a *GmailAdapter) listIDs(ctx context.Context, service *gmail.Service, opts *out.FetchOptions) ([]string, error) {
	query := fmt.Sprintf("after:%s", opts.After.Format("2006/01/02"))
	if opts.Query != "" {
		query += " " + opts.Query
	}

	max := opts.MaxResults
	if max <= 0 {
		max = 200
	}

	var ids []string
	pageToken := ""
	for len(ids) < max {
		pageSize := int64(max - len(ids))
		if pageSize > 100 {
			pageSize = 100
		}

		result, err := a.execute(func() (any, error) {
			req := service.Users.Messages.List("me").Q(query).MaxResults(pageSize)
			if pageToken != "" {
				req = req.PageToken(pageToken)
			}
			return req.Context(ctx).Do()
		})
		if err != nil {
			return ids, a.mapError(err, "list messages")
		}

		resp := result.(*gmail.ListMessagesResponse)
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

func (a *GmailAdapter) fetchMessages(ctx context.Context, service *gmail.Service, ids []string) ([]*domain.RawMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const maxConcurrency = 5
	type result struct {
		index int
		msg   *domain.RawMessage
		err   error
	}

	results := make(chan result, len(ids))
	semaphore := make(chan struct{}, maxConcurrency)

	for i, id := range ids {
		go func(idx int, msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			raw, err := a.getMessage(ctx, service, msgID)
			results <- result{index: idx, msg: raw, err: err}
		}(i, id)
	}

	messages := make([]*domain.RawMessage, len(ids))
	var rateLimited bool
	var firstErr error
	for range ids {
		r := <-results
		switch {
		case r.err == nil:
			messages[r.index] = r.msg
		case errors.Is(r.err, out.ErrRateLimited):
			rateLimited = true
		case firstErr == nil:
			firstErr = r.err
		}
	}

	fetched := make([]*domain.RawMessage, 0, len(ids))
	for _, msg := range messages {
		if msg != nil {
			fetched = append(fetched, msg)
		}
	}

	if rateLimited {
		return fetched, out.ErrRateLimited
	}
	if firstErr != nil && len(fetched) == 0 {
		return nil, firstErr
	}
	if firstErr != nil {
		a.log.WithError(firstErr).Warn("some messages failed to fetch")
	}
	return fetched, nil
}

func (a *GmailAdapter) getMessage(ctx context.Context, service *gmail.Service, messageID string) (*domain.RawMessage, error) {
	result, err := a.execute(func() (any, error) {
		return service.Users.Messages.Get("me", messageID).
			Format("full").
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, a.mapError(err, "get message")
	}
	return parseMessage(result.(*gmail.Message)), nil
}

func (a *GmailAdapter) execute(fn func() (any, error)) (any, error) {
	return a.cb.Execute(fn)
}

func (a *GmailAdapter) mapError(err error, op string) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, out.ErrProviderUnavailable)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return out.ErrRateLimited
		case 500, 502, 503:
			return fmt.Errorf("%s: %w", op, out.ErrProviderUnavailable)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseMessage(msg *gmail.Message) *domain.RawMessage {
	raw := &domain.RawMessage{
		MessageID:  msg.Id,
		ThreadID:   msg.ThreadId,
		ReceivedAt: time.Unix(msg.InternalDate/1000, 0).UTC(),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				raw.FromName, raw.FromEmail = parseFrom(header.Value)
			case "Subject":
				raw.Subject = header.Value
			}
		}
		raw.Body = parseBody(msg.Payload)
	}

	if raw.Body == "" {
		raw.Body = msg.Snippet
	}
	return raw
}

func parseFrom(value string) (name, email string) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", value
	}
	return addr.Name, addr.Address
}

// parseBody prefers text/plain; the normalizer strips HTML when only
// the html part exists.
func parseBody(payload *gmail.MessagePart) string {
	text, html := collectBody(payload)
	if text != "" {
		return text
	}
	return html
}

func collectBody(payload *gmail.MessagePart) (text, html string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			switch payload.MimeType {
			case "text/plain":
				text = string(data)
			case "text/html":
				html = string(data)
			}
		}
	}

	for _, part := range payload.Parts {
		t, h := collectBody(part)
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
	}
	return text, html
}
