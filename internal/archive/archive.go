package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/threadcraft/pulse/internal/store"
)

// Destination is the interface for an archive target (S3, local disk, etc.).
type Destination interface {
	// Write sends one tenant's JSONL payload to the destination.
	Write(ctx context.Context, tenantID string, data []byte) error
}

// Scheduler runs periodic archive exports for a fixed set of tenants.
type Scheduler struct {
	store        store.Store
	tenants      []string
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports each tenant's event log to
// the given destinations at the specified interval.
func NewScheduler(s store.Store, tenants []string, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:        s,
		tenants:      tenants,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic archiving. It runs an initial export immediately,
// then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.archiveOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.archiveOnce(ctx)
		}
	}
}

func (s *Scheduler) archiveOnce(ctx context.Context) {
	for _, tenant := range s.tenants {
		var buf bytes.Buffer
		if err := ExportJSONL(ctx, s.store, tenant, &buf); err != nil {
			s.logger.Error("archive export failed", "tenant_id", tenant, "err", err)
			continue
		}
		data := buf.Bytes()

		for i, dest := range s.destinations {
			if err := dest.Write(ctx, tenant, data); err != nil {
				s.logger.Error("archive destination write failed",
					"tenant_id", tenant, "destination", fmt.Sprintf("%d", i), "err", err)
			}
		}

		s.logger.Info("archive completed",
			"tenant_id", tenant, "destinations", len(s.destinations), "bytes", len(data))
	}
}
