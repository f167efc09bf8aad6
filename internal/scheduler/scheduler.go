package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherapp/internal/weather"
)

// DefaultJobTimeout bounds a single warm-up run.
const DefaultJobTimeout = time.Minute

// Runner is the part of weather.Service the scheduler drives.
type Runner interface {
	Run(ctx context.Context, req weather.Request) (*weather.Result, error)
}

// Scheduler periodically runs every provider through the cache so expired
// pages are refetched before clients ask for them.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	city      string
	interval  time.Duration
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// New creates a new Scheduler.
func New(runner Runner, city string, interval time.Duration, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		city:      city,
		interval:  interval,
		timeout:   DefaultJobTimeout,
		logger:    logger,
	}
}

// Start schedules the warm-up job, which also runs immediately, and starts
// the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: invalid interval %s", s.interval)
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.warm)
	if err != nil {
		return fmt.Errorf("scheduler: schedule warm-up: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.WithField("interval", s.interval.String()).Info("cache warmer started")
	return nil
}

// warm runs all providers through the cache, refetching every page that
// would expire before the next run.
func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, weather.Request{City: s.city, RefreshAhead: s.interval})
	if err != nil {
		s.logger.WithField("error", err).Warn("cache warm-up failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":    res.RunID,
		"succeeded": res.Succeeded(),
		"failed":    res.Failed(),
	}).Info("cache warm-up finished")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
