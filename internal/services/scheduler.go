package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/log"
)

// RecurringRunner is the mutation entry point the scheduler drives; the
// state provider implements it.
type RecurringRunner interface {
	ProcessRecurring(ctx context.Context, now time.Time) (int, error)
}

// Scheduler triggers the recurring-transaction pass once at startup and
// thereafter on a fixed interval. Delivery is best effort: if the process is
// not running when a period elapses, the elapsed-period arithmetic catches
// up on the next run.
type Scheduler struct {
	runner   RecurringRunner
	interval time.Duration
}

// NewScheduler creates a scheduler over the given runner.
func NewScheduler(runner RecurringRunner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Run blocks until ctx is cancelled, invoking the recurring pass at startup
// and on every tick. Individual failures are logged, not fatal: the next
// tick retries.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Recurring scheduler started",
		log.FieldComponent, log.ComponentWorker, "interval", s.interval)

	if count, err := s.runner.ProcessRecurring(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial recurring pass failed",
			log.FieldComponent, log.ComponentWorker, log.FieldError, err)
	} else {
		slog.InfoContext(ctx, "Initial recurring pass complete",
			log.FieldComponent, log.ComponentWorker, "generated", count)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Recurring scheduler stopped", log.FieldComponent, log.ComponentWorker)
			return ctx.Err()
		case now := <-ticker.C:
			count, err := s.runner.ProcessRecurring(ctx, now)
			if err != nil {
				slog.ErrorContext(ctx, "Recurring pass failed",
					log.FieldComponent, log.ComponentWorker, log.FieldError, err)
				continue
			}
			slog.InfoContext(ctx, "Recurring pass complete",
				log.FieldComponent, log.ComponentWorker,
				"generated", count,
				"next_check", now.Add(s.interval).Format(time.RFC3339))
		}
	}
}
