// Package driver hosts the periodic maintenance timer.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const defaultInterval = 5 * time.Second

// Maintainer runs one round of maintenance.
type Maintainer interface {
	RunMaintenance(ctx context.Context)
}

// Run calls m.RunMaintenance every interval until ctx is cancelled. Rounds
// never overlap: the next sleep starts only after the previous round returns.
func Run(ctx context.Context, m Maintainer, interval time.Duration, logger *slog.Logger) error {
	if m == nil {
		return fmt.Errorf("driver: maintainer is required")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("maintenance driver starting", slog.Duration("interval", interval))
	for {
		if ctx.Err() != nil {
			logger.Info("maintenance driver stopped")
			return nil
		}
		m.RunMaintenance(ctx)
		sleepWithContext(ctx, interval)
	}
}

// sleepWithContext sleeps for d or until ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
