// Package session stores conversation session snapshots.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots. Implementations must return copies, so callers can
// modify what they get without affecting stored state.
type Store interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Counter reports how many live sessions a store holds.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// RunSizeReporter sets the active-sessions gauge from c every interval until ctx is
// done. Backends that expire entries on their own, like Redis, need it to keep the
// gauge honest.
func RunSizeReporter(ctx context.Context, c Counter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := c.Count(ctx); err == nil {
				metrics.SessionsActive.Set(float64(n))
			}
		}
	}
}
