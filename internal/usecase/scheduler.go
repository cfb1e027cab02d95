package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// Scheduler wires the cron driver with the brief use case.
type Scheduler struct {
	driver ports.Scheduler
	brief  *Brief
	query  func(trigger time.Time) domain.Query
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring briefs. query builds the
// query for each trigger so the window can follow the trigger time.
func NewScheduler(driver ports.Scheduler, brief *Brief, query func(time.Time) domain.Query, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, brief: brief, query: query, logger: logger}
}

// Start registers the brief with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.brief == nil || s.query == nil {
		return nil
	}

	job := func(trigger time.Time) {
		brief, err := s.brief.Run(ctx, s.query(trigger))
		if err != nil {
			s.logger.Error("scheduled brief failed", "run_id", brief.RunID, "error", err)
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
