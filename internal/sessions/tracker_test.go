package sessions

import (
	"testing"
	"time"
)

func TestConnect_BasicTracking(t *testing.T) {
	tr := New()

	tr.Connect(Session{
		SessionID:  "sess-1",
		TenantID:   "t1",
		UserID:     "alice",
		RemoteAddr: "10.0.0.5:54321",
		UserAgent:  "curl/8.5",
	})

	roster := tr.Roster("")
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}

	e := roster[0]
	if e.SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %s", e.SessionID)
	}
	if e.TenantID != "t1" || e.UserID != "alice" {
		t.Errorf("unexpected identity: tenant=%s user=%s", e.TenantID, e.UserID)
	}
	if e.RemoteAddr != "10.0.0.5:54321" {
		t.Errorf("expected remote addr, got %s", e.RemoteAddr)
	}
	if e.MessagesSent != 0 {
		t.Errorf("expected 0 messages sent, got %d", e.MessagesSent)
	}
}

func TestConnect_IgnoresEmptySessionID(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "", TenantID: "t1", UserID: "alice"})

	if got := tr.Count(""); got != 0 {
		t.Fatalf("expected 0 sessions for empty ID, got %d", got)
	}
}

func TestDisconnect_RemovesSession(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "sess-1", TenantID: "t1", UserID: "alice"})
	tr.Disconnect("sess-1")

	if got := tr.Count(""); got != 0 {
		t.Fatalf("expected 0 sessions after disconnect, got %d", got)
	}
}

func TestTouch_CountsDeliveries(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "sess-1", TenantID: "t1", UserID: "alice"})
	tr.Touch("sess-1", true)
	tr.Touch("sess-1", true)
	tr.Touch("sess-1", false) // keepalive
	tr.Touch("unknown", true) // ignored

	roster := tr.Roster("t1")
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}
	if roster[0].MessagesSent != 2 {
		t.Errorf("expected 2 messages sent, got %d", roster[0].MessagesSent)
	}
}

func TestRoster_TenantScoped(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "sess-1", TenantID: "t1", UserID: "alice"})
	tr.Connect(Session{SessionID: "sess-2", TenantID: "t1", UserID: "bob"})
	tr.Connect(Session{SessionID: "sess-3", TenantID: "t2", UserID: "carol"})

	if got := len(tr.Roster("t1")); got != 2 {
		t.Errorf("expected 2 entries for t1, got %d", got)
	}
	if got := len(tr.Roster("t2")); got != 1 {
		t.Errorf("expected 1 entry for t2, got %d", got)
	}
	if got := len(tr.Roster("")); got != 3 {
		t.Errorf("expected 3 entries unscoped, got %d", got)
	}
	if got := tr.Count("t1"); got != 2 {
		t.Errorf("Count(t1) = %d, want 2", got)
	}
}

func TestRoster_SortedByMostRecent(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "first", TenantID: "t1", UserID: "a"})
	time.Sleep(5 * time.Millisecond)
	tr.Connect(Session{SessionID: "second", TenantID: "t1", UserID: "b"})
	time.Sleep(5 * time.Millisecond)
	tr.Touch("first", true)

	roster := tr.Roster("t1")
	if len(roster) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(roster))
	}
	if roster[0].SessionID != "first" {
		t.Errorf("expected first (most recently touched) on top, got %s", roster[0].SessionID)
	}
}

func TestSweep_EvictsStaleSessions(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "stale", TenantID: "t1", UserID: "alice"})
	tr.Connect(Session{SessionID: "live", TenantID: "t1", UserID: "bob"})

	// Backdate the stale session past the threshold.
	tr.mu.Lock()
	tr.sessions["stale"].lastSeen = time.Now().Add(-10 * time.Minute)
	tr.mu.Unlock()

	var evicted []string
	cfg := &ReaperConfig{
		StaleThreshold: 5 * time.Minute,
		SweepInterval:  time.Second,
		OnEvict: func(sessionID, _, _ string) {
			evicted = append(evicted, sessionID)
		},
	}

	tr.sweep(cfg)

	if len(evicted) != 1 || evicted[0] != "stale" {
		t.Errorf("expected stale to be evicted, got %v", evicted)
	}
	if got := tr.Count("t1"); got != 1 {
		t.Errorf("expected 1 surviving session, got %d", got)
	}
}

func TestSweep_TouchKeepsSessionAlive(t *testing.T) {
	tr := New()

	tr.Connect(Session{SessionID: "sess-1", TenantID: "t1", UserID: "alice"})
	tr.mu.Lock()
	tr.sessions["sess-1"].lastSeen = time.Now().Add(-10 * time.Minute)
	tr.mu.Unlock()

	// Keepalive arrives before the sweep.
	tr.Touch("sess-1", false)

	tr.sweep(&ReaperConfig{StaleThreshold: 5 * time.Minute})

	if got := tr.Count("t1"); got != 1 {
		t.Errorf("expected touched session to survive, got %d sessions", got)
	}
}

func TestStartReaper_StopsCleanly(t *testing.T) {
	tr := New()

	tr.StartReaper(&ReaperConfig{
		SweepInterval: 50 * time.Millisecond,
	})

	time.Sleep(150 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		tr.Stop()
		close(done)
	}()

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return within 2 seconds")
	}
}
