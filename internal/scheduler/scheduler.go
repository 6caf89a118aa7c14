package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

// Warmer primes the cache for a set of tables.
type Warmer interface {
	Warm(ctx context.Context, tables ...climate.Table) error
}

// Sweeper evicts sessions idle for longer than ttl.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

// Config controls the periodic jobs. Zero intervals disable a job.
type Config struct {
	WarmInterval  time.Duration
	WarmTimeout   time.Duration
	SweepInterval time.Duration
	SessionTTL    time.Duration
}

// Scheduler periodically warms the cache and sweeps idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	sweeper   Sweeper
	tables    []climate.Table
	cfg       Config
	logger    logger.Logger
}

// New creates a new Scheduler.
func New(cfg Config, tables []climate.Table, warmer Warmer, sweeper Sweeper, log logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		warmer:    warmer,
		sweeper:   sweeper,
		tables:    tables,
		cfg:       cfg,
		logger:    log.WithField("component", "scheduler"),
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.cfg.WarmInterval > 0 && s.warmer != nil && len(s.tables) > 0 {
		if _, err := s.scheduler.Every(s.cfg.WarmInterval).Do(s.warm); err != nil {
			return err
		}
	}

	if s.cfg.SweepInterval > 0 && s.sweeper != nil {
		if _, err := s.scheduler.Every(s.cfg.SweepInterval).WaitForSchedule().Do(s.sweep); err != nil {
			return err
		}
	}

	if len(s.scheduler.Jobs()) == 0 {
		s.logger.Infof("no jobs configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) warm() {
	timeout := s.cfg.WarmTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Debugf("running cache warm-up job")
	if err := s.warmer.Warm(ctx, s.tables...); err != nil {
		s.logger.Errorf("cache warm-up failed: %v", err)
		return
	}
	s.logger.Debugf("completed cache warm-up job")
}

func (s *Scheduler) sweep() {
	ttl := s.cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if n := s.sweeper.Sweep(ttl); n > 0 {
		s.logger.Debugf("swept %d sessions", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
