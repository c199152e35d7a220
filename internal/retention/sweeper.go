// Package retention runs the periodic notification retention sweep.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cleaner deletes expired notifications and reports how many went away.
// *notify.Engine satisfies it.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Sweeper triggers the retention sweep on a fixed interval. Each run is
// independent; a failed run is logged and the next tick tries again.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper that runs the cleaner at the given interval.
func NewSweeper(c Cleaner, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cleaner:  c,
		interval: interval,
		logger:   logger,
	}
}

// Start begins periodic sweeping. It runs an initial sweep immediately, then
// on each tick.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the sweeper and waits for the current sweep (if any) to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	// Run once immediately at startup.
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	deleted, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.logger.Error("retention sweep failed", "err", err)
		return
	}
	s.logger.Info("retention sweep completed", "deleted", deleted)
}
