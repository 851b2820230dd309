package bootstrap

import (
	"context"
	"time"

	"github.com/wolfman30/clinic-portal/pkg/logging"
)

// Sweeper removes expired sessions from stores without native TTLs.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// RunSweeper calls sweeper every interval until ctx is done. A nil sweeper
// returns immediately.
func RunSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *logging.Logger) {
	if sweeper == nil {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("session sweep failed", "error", err)
				}
				continue
			}
			if removed > 0 {
				logger.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}
