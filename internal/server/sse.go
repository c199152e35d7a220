package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/threadcraft/pulse/internal/notify"
	"github.com/threadcraft/pulse/internal/sessions"
)

const (
	// sseRingBufferSize is the number of recent messages kept in memory for
	// Last-Event-ID reconnection support.
	sseRingBufferSize = 1000

	// sseKeepaliveInterval is how often keepalive comments are sent to
	// prevent connection timeouts.
	sseKeepaliveInterval = 15 * time.Second
)

// sseEvent is a single message stored in the ring buffer and sent to SSE
// clients. UserID is empty for tenant-wide broadcasts.
type sseEvent struct {
	ID       uint64 // monotonically increasing sequence number
	TenantID string
	UserID   string
	Type     string // SSE event name, from the message envelope
	Data     []byte // JSON-encoded message
}

// sseHub fans messages out to connected SSE clients. It implements
// notify.Transport, so the engine's live delivery lands here directly. A
// ring buffer of recent messages supports Last-Event-ID reconnection.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	nextID  atomic.Uint64

	tracker *sessions.Tracker

	// Ring buffer for replay on reconnection.
	ringMu  sync.RWMutex
	ring    [sseRingBufferSize]sseEvent
	ringPos int // next write position (wraps around)
	ringLen int // number of valid entries (up to sseRingBufferSize)
}

// sseClient represents a single connected SSE consumer, pinned to one
// tenant and user.
type sseClient struct {
	sessionID string
	tenantID  string
	userID    string
	ch        chan *sseEvent // buffered channel for message delivery
}

func newSSEHub(tracker *sessions.Tracker) *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
		tracker: tracker,
	}
}

// SendToUser delivers a message to every open session of one user.
// Implements notify.Transport.
func (h *sseHub) SendToUser(tenantID, userID string, msg *notify.Message) error {
	evt, err := h.record(tenantID, userID, msg)
	if err != nil {
		return err
	}
	h.dispatch(evt)
	return nil
}

// SendToTenant delivers a message to every open session in the tenant.
// Implements notify.Transport.
func (h *sseHub) SendToTenant(tenantID string, msg *notify.Message) error {
	evt, err := h.record(tenantID, "", msg)
	if err != nil {
		return err
	}
	h.dispatch(evt)
	return nil
}

// record assigns the next sequence number, stores the message in the ring
// buffer, and returns the wrapped event.
func (h *sseHub) record(tenantID, userID string, msg *notify.Message) (*sseEvent, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal stream message: %w", err)
	}

	evt := &sseEvent{
		ID:       h.nextID.Add(1),
		TenantID: tenantID,
		UserID:   userID,
		Type:     msg.Type,
		Data:     data,
	}

	h.ringMu.Lock()
	h.ring[h.ringPos] = *evt
	h.ringPos = (h.ringPos + 1) % sseRingBufferSize
	if h.ringLen < sseRingBufferSize {
		h.ringLen++
	}
	h.ringMu.Unlock()

	return evt, nil
}

// dispatch fans an event out to the connected clients it addresses.
func (h *sseHub) dispatch(evt *sseEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.matches(evt) {
			continue
		}
		select {
		case c.ch <- evt:
			h.tracker.Touch(c.sessionID, true)
		default:
			// Drop if client is slow — prevents blocking the publisher.
		}
	}
}

// matches reports whether an event addresses this client's session.
func (c *sseClient) matches(evt *sseEvent) bool {
	if evt.TenantID != c.tenantID {
		return false
	}
	return evt.UserID == "" || evt.UserID == c.userID
}

// subscribe registers a new SSE client. Call unsubscribe when done.
func (h *sseHub) subscribe(tenantID, userID string) *sseClient {
	c := &sseClient{
		sessionID: uuid.NewString(),
		tenantID:  tenantID,
		userID:    userID,
		ch:        make(chan *sseEvent, 64),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// unsubscribe removes a client from the hub.
func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns buffered events with ID > lastID, in order.
// Returns nil if lastID is too old (no longer in buffer).
func (h *sseHub) eventsSince(lastID uint64) []*sseEvent {
	h.ringMu.RLock()
	defer h.ringMu.RUnlock()

	if h.ringLen == 0 {
		return nil
	}

	var result []*sseEvent

	// Walk the ring buffer from oldest to newest.
	start := h.ringPos - h.ringLen
	if start < 0 {
		start += sseRingBufferSize
	}
	for i := range h.ringLen {
		idx := (start + i) % sseRingBufferSize
		evt := &h.ring[idx]
		if evt.ID > lastID {
			result = append(result, evt)
		}
	}

	return result
}

// handleStream handles GET /v1/stream (SSE endpoint). The caller's identity
// pins the stream to one tenant and user; broadcasts for the tenant and
// direct messages for the user both arrive on it.
func (s *PulseServer) handleStream(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Ensure response supports flushing (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client := s.sseHub.subscribe(id.TenantID, id.UserID)
	defer s.sseHub.unsubscribe(client)

	s.Sessions.Connect(sessions.Session{
		SessionID:  client.sessionID,
		TenantID:   id.TenantID,
		UserID:     id.UserID,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	defer s.Sessions.Disconnect(client.sessionID)

	slog.Info("stream connected",
		"session_id", client.sessionID, "tenant_id", id.TenantID, "user_id", id.UserID)

	// Set SSE headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// If the client sent Last-Event-ID, replay buffered messages it missed.
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastID, err := strconv.ParseUint(lastIDStr, 10, 64); err == nil {
			for _, evt := range s.sseHub.eventsSince(lastID) {
				if client.matches(evt) {
					writeSSEEvent(w, evt)
				}
			}
			flusher.Flush()
		}
	}

	// Stream messages until the client disconnects.
	ctx := r.Context()
	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stream disconnected", "session_id", client.sessionID)
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			// Send a comment line as keepalive.
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
			s.Sessions.Touch(client.sessionID, false)
		}
	}
}

// writeSSEEvent writes a single SSE event to the writer.
func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.ID)
	fmt.Fprintf(w, "event:%s\n", evt.Type)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}
