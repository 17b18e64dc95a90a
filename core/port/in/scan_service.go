// Package in defines inbound ports (driving ports) for the engine.
package in

import (
	"context"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
)

// ScanRequest bounds one scan invocation. Zero values fall back to the
// configured defaults.
type ScanRequest struct {
	DaysBack   int
	MaxResults int
}

// Window converts the request into provider fetch options.
func (r *ScanRequest) Window(now time.Time, defaultDays, defaultMax int) *out.FetchOptions {
	days := r.DaysBack
	if days <= 0 {
		days = defaultDays
	}
	max := r.MaxResults
	if max <= 0 {
		max = defaultMax
	}
	return &out.FetchOptions{
		After:      now.AddDate(0, 0, -days),
		MaxResults: max,
	}
}

// ScanService drives one bounded mailbox scan for an owner.
type ScanService interface {
	Scan(ctx context.Context, userID uuid.UUID, req *ScanRequest) (*domain.ScanReport, error)
	LatestReport(ctx context.Context, userID uuid.UUID) (*domain.ScanReport, error)
	ListUnresolved(ctx context.Context, userID uuid.UUID, limit int) ([]*out.UnresolvedEvidence, error)
}
