package application

import (
	"context"
	"errors"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
)

// Resolution maps a classified event to a specific application record.
// Unresolved means zero or ambiguously many candidates matched; the
// event is reported for manual review and nothing is mutated.
type Resolution struct {
	Application *domain.Application
	Candidates  []*domain.Application
	Unresolved  bool
}

// Resolver finds the application record an event belongs to.
type Resolver struct {
	apps out.ApplicationRepository

	// strict disables the single-candidate company fallback, trading
	// recall for a guarantee against misattribution.
	strict bool
}

func NewResolver(apps out.ApplicationRepository, strict bool) *Resolver {
	return &Resolver{apps: apps, strict: strict}
}

// Resolve locates the record for an actionable classification.
//
// Exact (company, position) identity is tried first. For response
// events a fallback matches by company alone when exactly one open
// application for that company exists; with zero or several candidates
// the event comes back unresolved rather than risking the wrong record.
// For NewApplication an empty resolution means "create", handled by the
// caller, so it is never unresolved on a miss with a known company.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, res *domain.ClassificationResult) (*Resolution, error) {
	if res.Company == "" {
		// Without an employer there is nothing to key on.
		return &Resolution{Unresolved: true}, nil
	}

	app, err := r.apps.GetByIdentity(ctx, userID, res.Company, res.Position)
	if err != nil && !errors.Is(err, out.ErrNotFound) {
		return nil, err
	}
	if app != nil {
		return &Resolution{Application: app}, nil
	}

	if res.EventType == domain.EventNewApplication {
		// Identity miss on a confirmation means a new record.
		return &Resolution{}, nil
	}

	if r.strict {
		return &Resolution{Unresolved: true}, nil
	}

	open, err := r.apps.ListOpenByCompany(ctx, userID, res.Company)
	if err != nil {
		return nil, err
	}
	if len(open) == 1 {
		return &Resolution{Application: open[0]}, nil
	}
	return &Resolution{Unresolved: true, Candidates: open}, nil
}
