package out

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrScanInProgress means another scan holds the owner's lock.
var ErrScanInProgress = errors.New("scan already in progress for owner")

// ScanLocker serializes scans per owner. Scans for different owners run
// independently; two scans for the same owner must never overlap.
type ScanLocker interface {
	// Acquire takes the owner's exclusive scan lock or fails fast with
	// ErrScanInProgress. The returned release function is idempotent.
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}
