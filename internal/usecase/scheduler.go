package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"NewsScope/internal/ports"
)

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// Scheduler wires the ticking driver with cache maintenance.
type Scheduler struct {
	driver  ports.Scheduler
	sweeper Sweeper
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring sweep.
func NewScheduler(driver ports.Scheduler, sweeper Sweeper, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, sweeper: sweeper, logger: logger}
}

// Start registers the sweep job with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.sweeper == nil {
		return nil
	}

	job := func(trigger time.Time) {
		removed := s.sweeper.Sweep()
		s.logger.Debug("cache sweep", "removed", removed, "at", trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
