package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/socli/internal/platform/logging"
)

// RosterCursor reads the slug at index modulo the roster size. size is 0
// while no roster is installed.
type RosterCursor interface {
	SlugAt(index int) (slug string, size int)
}

type RefreshSchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RefreshScheduler walks the roster one player per tick, forcing a price
// refresh, and requests bulk stats and injuries every BatchSize players.
type RefreshScheduler struct {
	roster     RosterCursor
	dispatcher IntentDispatcher
	cfg        RefreshSchedulerConfig
	logger     *logging.Logger

	cursor int
	buffer []string
	// statsSent marks that the stats half of a full buffer went out and only
	// the injuries half is pending.
	statsSent bool
}

func NewRefreshScheduler(roster RosterCursor, dispatcher IntentDispatcher, cfg RefreshSchedulerConfig, logger *logging.Logger) *RefreshScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &RefreshScheduler{
		roster:     roster,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
		buffer:     make([]string, 0, cfg.BatchSize),
	}
}

// Run ticks until ctx is cancelled. It is not safe to call Run and Tick concurrently.
func (s *RefreshScheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "refresh scheduler started", "interval", s.cfg.Interval, "batch_size", s.cfg.BatchSize)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := s.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "refresh tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "refresh scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *RefreshScheduler) Tick(ctx context.Context) error {
	slug, size := s.roster.SlugAt(s.cursor)
	if size == 0 {
		return nil
	}

	if err := s.dispatcher.Dispatch(ctx, RefreshPricesIntent(slug, true)); err != nil {
		return err
	}
	s.buffer = append(s.buffer, slug)
	s.cursor = (s.cursor + 1) % size

	if len(s.buffer) < s.cfg.BatchSize {
		return nil
	}

	return s.flush(ctx)
}

// flush sends the buffered slugs for stats and injuries. The buffer is kept
// until both dispatches succeed so a failed tick retries the whole batch on
// the next one.
func (s *RefreshScheduler) flush(ctx context.Context) error {
	if !s.statsSent {
		if err := s.dispatcher.Dispatch(ctx, RefreshStatsIntent(slices.Clone(s.buffer))); err != nil {
			return err
		}
		s.statsSent = true
	}
	if err := s.dispatcher.Dispatch(ctx, RefreshInjuriesIntent(slices.Clone(s.buffer))); err != nil {
		return err
	}
	s.buffer = make([]string, 0, s.cfg.BatchSize)
	s.statsSent = false
	return nil
}
