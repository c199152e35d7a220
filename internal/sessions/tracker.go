// Package sessions tracks live stream connections for the session roster.
//
// The Tracker maintains an in-memory map of connected clients, updated
// directly by the SSE hub when a stream attaches or detaches. A background
// reaper goroutine evicts sessions whose connection died without a clean
// disconnect, so the roster stays honest even after abrupt client drops.
package sessions

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is a snapshot of a single live session.
type Entry struct {
	SessionID     string    `json:"session_id"`
	TenantID      string    `json:"tenant_id"`
	UserID        string    `json:"user_id"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastSeen      time.Time `json:"last_seen"`
	RemoteAddr    string    `json:"remote_addr,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	IdleSecs      float64   `json:"idle_secs"`
	DurationSecs  float64   `json:"duration_secs"`
	MessagesSent  int64     `json:"messages_sent"`
}

// Session is the data recorded when a stream connects.
type Session struct {
	SessionID  string
	TenantID   string
	UserID     string
	RemoteAddr string
	UserAgent  string
}

// ReaperConfig configures the background stale-session reaper.
type ReaperConfig struct {
	// StaleThreshold is how long a session may go without activity before
	// being evicted. Default: 5 minutes (keepalives should arrive far more
	// often than that on a healthy connection).
	StaleThreshold time.Duration

	// SweepInterval is how often the reaper scans for stale sessions.
	// Default: 60 seconds.
	SweepInterval time.Duration

	// OnEvict is called for each evicted session. Called outside the lock,
	// safe to make blocking calls.
	OnEvict func(sessionID, tenantID, userID string)
}

// Tracker maintains the in-memory roster of connected stream clients.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type sessionState struct {
	tenantID     string
	userID       string
	connectedAt  time.Time
	lastSeen     time.Time
	remoteAddr   string
	userAgent    string
	messagesSent int64
}

// New creates a new session tracker.
func New() *Tracker {
	return &Tracker{
		sessions: make(map[string]*sessionState),
	}
}

// Connect registers a newly attached stream.
func (t *Tracker) Connect(s Session) {
	if s.SessionID == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[s.SessionID] = &sessionState{
		tenantID:    s.TenantID,
		userID:      s.UserID,
		connectedAt: now,
		lastSeen:    now,
		remoteAddr:  s.RemoteAddr,
		userAgent:   s.UserAgent,
	}
}

// Disconnect removes a session after a clean detach.
func (t *Tracker) Disconnect(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}

// Touch records activity on a session: a delivered message or a keepalive.
// Unknown session IDs are ignored.
func (t *Tracker) Touch(sessionID string, delivered bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	state.lastSeen = time.Now()
	if delivered {
		state.messagesSent++
	}
}

// Roster returns a snapshot of live sessions for one tenant, sorted by most
// recently active. An empty tenantID returns every session.
func (t *Tracker) Roster(tenantID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.sessions))

	for id, state := range t.sessions {
		if tenantID != "" && state.tenantID != tenantID {
			continue
		}
		entries = append(entries, Entry{
			SessionID:    id,
			TenantID:     state.tenantID,
			UserID:       state.userID,
			ConnectedAt:  state.connectedAt,
			LastSeen:     state.lastSeen,
			RemoteAddr:   state.remoteAddr,
			UserAgent:    state.userAgent,
			IdleSecs:     now.Sub(state.lastSeen).Seconds(),
			DurationSecs: now.Sub(state.connectedAt).Seconds(),
			MessagesSent: state.messagesSent,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	return entries
}

// Count returns the number of live sessions for a tenant. An empty tenantID
// counts every session.
func (t *Tracker) Count(tenantID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if tenantID == "" {
		return len(t.sessions)
	}
	n := 0
	for _, state := range t.sessions {
		if state.tenantID == tenantID {
			n++
		}
	}
	return n
}

// StartReaper launches a background goroutine that periodically evicts stale
// sessions. Call Stop() to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = 5 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("sessions: reaper started",
		"stale_threshold", cfg.StaleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	type evicted struct {
		sessionID string
		tenantID  string
		userID    string
	}
	var stale []evicted

	t.mu.Lock()
	for id, state := range t.sessions {
		if now.Sub(state.lastSeen) > cfg.StaleThreshold {
			delete(t.sessions, id)
			stale = append(stale, evicted{sessionID: id, tenantID: state.tenantID, userID: state.userID})
		}
	}
	t.mu.Unlock()

	for _, s := range stale {
		slog.Info("sessions: reaper evicted stale session",
			"session_id", s.sessionID,
			"tenant_id", s.tenantID,
			"user_id", s.userID,
			"threshold", cfg.StaleThreshold)
		if cfg.OnEvict != nil {
			cfg.OnEvict(s.sessionID, s.tenantID, s.userID)
		}
	}
}
