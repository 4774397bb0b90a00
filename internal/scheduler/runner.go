// Package scheduler provides the periodic refresh driver.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/hyperapi/internal/logging"
)

// Runner executes a task on a fixed period. The timer is re-armed only
// after the task returns, so cycles never overlap and the spacing is
// relative to completion rather than the wall clock. A running cycle is not
// canceled mid-flight; cancellation takes effect between cycles.
type Runner struct {
	interval time.Duration
	task     func(context.Context) error
	logger   *slog.Logger
}

// New constructs a runner. A non-positive interval defaults to one hour.
func New(interval time.Duration, task func(context.Context) error, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{interval: interval, task: task, logger: logger}
}

// Run executes the task immediately, then on every period, until ctx is
// canceled. Task failures are logged; the next cycle is always scheduled.
func (r *Runner) Run(ctx context.Context) {
	for {
		runID := uuid.NewString()
		logger := r.logger.With("run_id", runID)
		start := time.Now()

		if err := r.task(logging.ContextWithLogger(ctx, logger)); err != nil {
			logger.ErrorContext(ctx, "refresh cycle failed", "error", err)
		} else {
			logger.InfoContext(ctx, "refresh cycle completed", "duration", time.Since(start))
		}

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
