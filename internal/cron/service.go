package cron

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
)

const (
	defaultInterval   = 15 * time.Minute
	defaultJobTimeout = 5 * time.Minute
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	Interval   time.Duration
	JobTimeout time.Duration
}

// Service runs every registered job once per interval. Only the instance
// holding the lock runs a cycle; jobs within a cycle run sequentially and one
// failing, hanging past its timeout or panicking does not stop the rest.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Lock == nil {
		return nil, errors.New("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = &Registry{}
	}
	s := &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   params.Interval,
		jobTimeout: params.JobTimeout,
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.jobTimeout <= 0 {
		s.jobTimeout = defaultJobTimeout
	}
	return s, nil
}

// Run executes a cycle immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle.failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job a single time under the lock and returns the
// combined job errors.
func (s *Service) RunOnce(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.metrics.CycleSkipped()
		s.logg.Info(ctx, "cron.cycle.skipped_locked")
		return nil
	}
	defer func() {
		// release even when shutdown canceled ctx mid cycle
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "cron.lock.release_failed", relErr)
		}
	}()

	s.logg.Info(ctx, "cron.cycle.start")
	var errs error
	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			break
		}
		if jobErr := s.runJob(ctx, job); jobErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), jobErr))
		}
	}
	s.logg.Info(s.logg.WithField(ctx, "failed_jobs", len(multierr.Errors(errs))), "cron.cycle.complete")
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	logCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx, cancel := context.WithTimeout(logCtx, s.jobTimeout)
	defer cancel()

	s.logg.Info(logCtx, "cron.job.start")
	start := time.Now()
	panicked, err := invoke(jobCtx, job)
	duration := time.Since(start)
	logCtx = s.logg.WithField(logCtx, "duration_ms", duration.Milliseconds())

	outcome := metrics.JobSucceeded
	switch {
	case panicked:
		outcome = metrics.JobPanicked
	case err != nil && errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		outcome = metrics.JobTimedOut
	case err != nil:
		outcome = metrics.JobFailed
	}
	s.metrics.ObserveRun(job.Name(), outcome, duration)

	if err != nil {
		s.logg.Error(s.logg.WithField(logCtx, "outcome", outcome), "cron.job.failed", err)
		return err
	}
	s.logg.Info(logCtx, "cron.job.complete")
	return nil
}

func invoke(ctx context.Context, job Job) (panicked bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			panicked = true
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return false, job.Run(ctx)
}
