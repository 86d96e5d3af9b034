// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// PreviewSweeper removes preview batches whose retention window elapsed.
type PreviewSweeper interface {
	SweepExpired() int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	sweeper PreviewSweeper
	logger  *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(sweeper PreviewSweeper, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Preview sweep: every 10 minutes
	_, err := s.cron.AddFunc("*/10 * * * *", s.sweepPreviews)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers a sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.sweepPreviews()
}

func (s *Scheduler) sweepPreviews() {
	removed := s.sweeper.SweepExpired()
	if removed > 0 {
		s.logger.Info("expired previews removed", slog.Int("count", removed))
	}
}
