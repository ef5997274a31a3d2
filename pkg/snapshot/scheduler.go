package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the background revalidation interval
const DefaultInterval = 10 * time.Second

// Scheduler rebuilds snapshots on a fixed interval
type Scheduler struct {
	builder  *Builder
	interval time.Duration
	logger   *logrus.Logger
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Intervals under a second are rounded up by cron.
func NewScheduler(builder *Builder, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		builder:  builder,
		interval: interval,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(
				cron.Recover(cronLogger),
				cron.SkipIfStillRunning(cronLogger),
			),
		),
	}
}

// Start registers the rebuild job and starts the scheduler.
// The job's context is cancelled by Stop or when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		s.cancel()
		s.cancel = nil
		return fmt.Errorf("failed to schedule snapshot rebuild: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("interval", s.interval.String()).Info("Snapshot scheduler started")
	return nil
}

// RunNow triggers a rebuild immediately on the caller's goroutine
func (s *Scheduler) RunNow(ctx context.Context) error {
	_, err := s.builder.Rebuild(ctx)
	return err
}

// Stop halts the scheduler and waits for a running rebuild to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	done := s.cron.Stop()
	cancel()
	<-done.Done()
	s.logger.Info("Snapshot scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	// Rebuild logs its own failures; the previous snapshot keeps serving.
	_, _ = s.builder.Rebuild(ctx)
}
