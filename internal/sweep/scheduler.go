package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner is a single sweep execution.
type Runner interface {
	Run(ctx context.Context) (*Summary, error)
}

// Scheduler fires sweeps on a cron schedule. A sweep still running when the
// next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler parses spec (standard five-field cron or descriptors such as
// "@every 1h") and registers runner against it.
func NewScheduler(spec string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		runner: runner,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing sweeps. Each sweep inherits ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.logger.InfoContext(ctx, "sweep scheduler started")
}

// Stop cancels any running sweep and waits for it to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow performs a sweep immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*Summary, error) {
	return s.runner.Run(ctx)
}

func (s *Scheduler) tick() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "scheduled sweep failed", "error", err)
	}
}
