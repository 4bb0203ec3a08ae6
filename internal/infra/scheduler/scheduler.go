package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work. A returned error is logged; it never stops the schedule.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on fixed intervals on its own goroutine.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped scheduler. Panics inside jobs are recovered and a job
// still running when its next tick fires is skipped.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	adapter := cronLogger{logger: logger.Named("scheduler")}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.SkipIfStillRunning(adapter), cron.Recover(adapter)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers job to run each interval once the scheduler is started.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval for %s must be positive, got %v", name, interval)
	}
	if job == nil {
		return errors.New("scheduler: job is nil")
	}

	if _, err := s.cron.AddFunc("@every "+interval.String(), func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("scheduler: add %s: %w", name, err)
	}

	s.logger.Info("job scheduled", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

// RunNow executes job once on the calling goroutine with the same error and panic isolation.
func (s *Scheduler) RunNow(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	if err := job(s.ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
	}
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents further runs, cancels the context handed to running jobs and
// waits for them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
