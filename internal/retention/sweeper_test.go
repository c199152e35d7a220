package retention

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// mockCleaner records calls to CleanupExpired.
type mockCleaner struct {
	runs atomic.Int64
	err  error
}

func (c *mockCleaner) CleanupExpired(_ context.Context) (int64, error) {
	c.runs.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}

func TestSweeperStartStop(t *testing.T) {
	cleaner := &mockCleaner{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sw := NewSweeper(cleaner, 50*time.Millisecond, logger)
	sw.Start()

	// Wait for at least the initial sweep + one tick.
	time.Sleep(120 * time.Millisecond)
	sw.Stop()

	if runs := cleaner.runs.Load(); runs < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", runs)
	}
}

func TestSweeperStop_NoStart(t *testing.T) {
	sw := NewSweeper(&mockCleaner{}, time.Minute, nil)
	// Stop without Start should not panic.
	sw.Stop()
}

func TestSweeperKeepsRunningAfterFailure(t *testing.T) {
	cleaner := &mockCleaner{err: errors.New("db offline")}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sw := NewSweeper(cleaner, 30*time.Millisecond, logger)
	sw.Start()

	time.Sleep(100 * time.Millisecond)
	sw.Stop()

	if runs := cleaner.runs.Load(); runs < 2 {
		t.Fatalf("expected sweeps to continue after failure, got %d", runs)
	}
}
