package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when a cron spec cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	spec   string
	job    Job
	runNow bool
	logger *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunNow also runs the job once immediately when Run starts.
func WithRunNow(runNow bool) Option {
	return func(s *Scheduler) {
		s.runNow = runNow
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New validates spec and returns a Scheduler for job.
func New(spec string, job Job, opts ...Option) (*Scheduler, error) {
	if _, err := parser().Parse(spec); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, spec, err)
	}
	s := &Scheduler{
		spec:   spec,
		job:    job,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is done. It waits for a
// running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{s.logger}
	c := cron.New(cron.WithSeconds(), cron.WithLogger(logger))

	// The immediate run bypasses the cron's own chain, so both wrappers
	// live on the job itself.
	wrapped := cron.NewChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	).Then(cron.FuncJob(func() { s.job(ctx) }))
	if _, err := c.AddJob(s.spec, wrapped); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, s.spec, err)
	}

	c.Start()
	s.logger.Info("schedule started", "spec", s.spec)

	var wg sync.WaitGroup
	if s.runNow {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrapped.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("schedule stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	wg.Wait()
	return nil
}

func parser() cron.Parser {
	return cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
