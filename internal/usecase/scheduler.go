package usecase

import (
	"context"
	"log/slog"
	"time"

	"DraftReviewer/internal/ports"
)

// Scheduler wires the interval driver with the sweep use case.
type Scheduler struct {
	driver  ports.Scheduler
	sweeper *Sweeper
	logger  *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring sweeps.
func NewScheduler(driver ports.Scheduler, sweeper *Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, sweeper: sweeper, logger: logger}
}

// Start registers the sweeper with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.sweeper == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.sweeper.Run(ctx, trigger); err != nil && s.logger != nil {
			s.logger.Error("sweep failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
