// Package scheduler drives the periodic reconciliation jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	jobs     *Jobs
	logger   *slog.Logger
	interval time.Duration
}

// NewScheduler creates a scheduler running every job once per interval. A job still running
// when its next tick arrives skips that tick; different jobs may overlap.
func NewScheduler(jobs *Jobs, logger *slog.Logger, interval time.Duration) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:     c,
		jobs:     jobs,
		logger:   logger,
		interval: interval,
	}
}

// Schedule returns the cron spec used for every job.
func (s *Scheduler) Schedule() string {
	return fmt.Sprintf("@every %s", s.interval)
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}
	schedule := s.Schedule()

	jobs := []struct {
		name string
		fn   func()
	}{
		{"ledger sweep", s.jobs.SweepLedgers},
		{"rollback sweep", s.jobs.RollbackExpired},
		{"reprocess sweep", s.jobs.ReprocessPending},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(schedule, job.fn); err != nil {
			s.logger.Error("failed to schedule job", "job", job.name, "error", err)
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		s.logger.Info("scheduled job", "job", job.name, "schedule", schedule)
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
