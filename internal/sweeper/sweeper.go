// Package sweeper periodically re-drives notification dispatch for
// registrations whose delivery status still has unsent records. Together
// with the dispatcher's skip-on-sent rule this gives at-least-once delivery
// without repeating emails that already went out.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Resender re-drives dispatch for one registration.
type Resender interface {
	Resend(ctx context.Context, fsaID string) error
}

// PendingLister returns fsa ids that still have unsent notifications.
type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]string, error)
}

// Config holds the sweeper configuration.
type Config struct {
	Resender Resender
	Pending  PendingLister
	// Interval between sweeps. Must be positive.
	Interval time.Duration
	// BatchLimit caps the registrations examined per sweep. Defaults to 100.
	BatchLimit int
	// MaxConcurrency bounds parallel resends within one sweep. Defaults to 3.
	MaxConcurrency int
	Logger         *slog.Logger
}

// Sweeper runs the retry sweep on a gocron schedule.
type Sweeper struct {
	cron       gocron.Scheduler
	resender   Resender
	pending    PendingLister
	interval   time.Duration
	batchLimit int
	semaphore  chan struct{}
	logger     *slog.Logger
}

// New creates a new Sweeper.
func New(cfg Config) (*Sweeper, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 100
	}
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		cron:       cron,
		resender:   cfg.Resender,
		pending:    cfg.Pending,
		interval:   cfg.Interval,
		batchLimit: batchLimit,
		semaphore:  make(chan struct{}, maxConc),
		logger:     logger,
	}, nil
}

// Start schedules the periodic sweep and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.Sweep(ctx) }),
	)
	if err != nil {
		return fmt.Errorf("scheduling retry sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("retry sweeper started", "interval", s.interval)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Sweeper) Stop() error {
	return s.cron.Shutdown()
}

// Sweep runs one pass: list pending registrations and re-drive dispatch for
// each, with bounded concurrency. Failures are logged and retried on the
// next sweep.
func (s *Sweeper) Sweep(ctx context.Context) {
	ids, err := s.pending.ListPending(ctx, s.batchLimit)
	if err != nil {
		s.logger.Error("listing pending registrations failed", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	s.logger.Info("retry sweep started", "pending", len(ids))

	var wg sync.WaitGroup
	for _, fsaID := range ids {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case s.semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(fsaID string) {
			defer wg.Done()
			defer func() { <-s.semaphore }()

			if err := s.resender.Resend(ctx, fsaID); err != nil {
				s.logger.Warn("retry dispatch failed", "fsa_id", fsaID, "error", err)
			}
		}(fsaID)
	}
	wg.Wait()
}
