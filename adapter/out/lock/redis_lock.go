// Package lock serializes scans per owner with a Redis lease.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobtrack_server/core/port/out"
	"jobtrack_server/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ScanLocker implements out.ScanLocker with SET NX and a TTL, so a
// crashed scan frees its lock after the lease expires instead of
// wedging the owner forever.
type ScanLocker struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewScanLocker(client *redis.Client, ttl time.Duration) *ScanLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScanLocker{
		redis: client,
		ttl:   ttl,
		log:   logger.Default().WithField("component", "scan_lock"),
	}
}

var _ out.ScanLocker = (*ScanLocker)(nil)

func (l *ScanLocker) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := l.key(userID)

	ok, err := l.redis.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		return nil, out.ErrScanInProgress
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Fresh context: the scan's context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := l.redis.Del(ctx, key).Err(); err != nil {
				l.log.WithError(err).Warn("scan lock release failed; lease will expire")
			}
		})
	}
	return release, nil
}

func (l *ScanLocker) key(userID uuid.UUID) string {
	return "scan:lock:" + userID.String()
}
