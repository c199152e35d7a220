// Package notify implements the event pipeline: durable recording of domain
// events, best-effort live broadcast to connected sessions, per-user inbox
// fan-out, and the inbox read/cleanup operations.
//
// Ordering for a single event: persistence completes before any broadcast is
// attempted, and processed_at is stamped only after the delivery attempts
// finish. There is no ordering guarantee across different events. Live
// delivery is at-most-once; nothing in this package retries.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadcraft/pulse/internal/audience"
	"github.com/threadcraft/pulse/internal/events"
	"github.com/threadcraft/pulse/internal/idgen"
	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// DefaultRetentionWindow is how long notifications without an explicit expiry
// are kept before the sweeper removes them.
const DefaultRetentionWindow = 30 * 24 * time.Hour

// Engine wires the store, live transport, audience resolver, and bus
// publisher together. All collaborators are injected; the engine holds no
// other mutable state and is safe for concurrent use.
type Engine struct {
	store     store.Store
	transport Transport
	resolver  audience.Resolver
	bus       events.Publisher
	logger    *slog.Logger
	retention time.Duration
}

// NewEngine returns an Engine. A nil transport, resolver, or bus is replaced
// with a no-op implementation; a nil logger falls back to slog.Default.
func NewEngine(s store.Store, t Transport, r audience.Resolver, bus events.Publisher, logger *slog.Logger) *Engine {
	if t == nil {
		t = NopTransport{}
	}
	if r == nil {
		r = audience.NopResolver{}
	}
	if bus == nil {
		bus = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     s,
		transport: t,
		resolver:  r,
		bus:       bus,
		logger:    logger,
		retention: DefaultRetentionWindow,
	}
}

// SetRetentionWindow overrides the sweeper's fixed-age cutoff.
func (e *Engine) SetRetentionWindow(d time.Duration) {
	if d > 0 {
		e.retention = d
	}
}

// RecordEvent validates and persists an event with processed_at unset.
// Persistence is a precondition for delivery: a store rejection propagates to
// the caller and no broadcast is attempted.
func (e *Engine) RecordEvent(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if err := model.ValidateEvent(ev); err != nil {
		return nil, err
	}
	if ev.ID == "" {
		id, err := idgen.NewEventID()
		if err != nil {
			return nil, err
		}
		ev.ID = id
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	ev.ProcessedAt = nil

	if err := e.store.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Broadcast attempts live delivery for a recorded event and then stamps
// processed_at, regardless of delivery outcome. Delivery failures are logged
// and swallowed; they never propagate.
func (e *Engine) Broadcast(ctx context.Context, ev *model.Event) {
	e.deliver(ev)
	e.markProcessed(ctx, ev)
}

// PublishResult reports the outcome of a full pipeline run.
type PublishResult struct {
	Event  *model.Event `json:"event"`
	FanOut FanOutResult `json:"fan_out"`
}

// Publish runs the whole pipeline for one event: record, mirror onto the bus,
// attempt live delivery, fan out inbox notifications, and mark the event
// processed. Only the initial persistence failure is fatal; everything after
// it is absorbed so a notification problem never rolls back the business
// action that produced the event.
func (e *Engine) Publish(ctx context.Context, ev *model.Event) (*PublishResult, error) {
	ev, err := e.RecordEvent(ctx, ev)
	if err != nil {
		return nil, err
	}

	if err := e.bus.Publish(ctx, ev); err != nil {
		e.logger.Warn("bus publish failed", "event_id", ev.ID, "tenant_id", ev.TenantID, "error", err)
	}

	e.deliver(ev)
	res := e.FanOut(ctx, ev)
	e.markProcessed(ctx, ev)

	return &PublishResult{Event: ev, FanOut: res}, nil
}

// deliver performs the live delivery attempts for one event. Recipients on an
// explicit list are attempted independently; one failure never aborts the
// rest. Events with is_broadcast unset skip live delivery entirely.
func (e *Engine) deliver(ev *model.Event) {
	if !ev.IsBroadcast {
		return
	}

	msg := NewMessage(ev)
	if len(ev.BroadcastToUsers) > 0 {
		for _, userID := range ev.BroadcastToUsers {
			if err := e.transport.SendToUser(ev.TenantID, userID, msg); err != nil {
				e.logger.Warn("live delivery failed",
					"event_id", ev.ID, "tenant_id", ev.TenantID, "user_id", userID, "error", err)
			}
		}
		return
	}

	if err := e.transport.SendToTenant(ev.TenantID, msg); err != nil {
		e.logger.Warn("tenant broadcast failed",
			"event_id", ev.ID, "tenant_id", ev.TenantID, "error", err)
	}
}

// markProcessed stamps processed_at. A failure here is logged but does not
// reverse or retry the already-attempted delivery; the event simply stays
// visible as unprocessed for offline auditing.
func (e *Engine) markProcessed(ctx context.Context, ev *model.Event) {
	if err := e.store.MarkEventProcessed(ctx, ev.TenantID, ev.ID); err != nil {
		e.logger.Warn("failed to mark event processed",
			"event_id", ev.ID, "tenant_id", ev.TenantID, "error", err)
		return
	}
	if ev.ProcessedAt == nil {
		now := time.Now().UTC()
		ev.ProcessedAt = &now
	}
}

// GetEvent returns a single tenant-scoped event.
func (e *Engine) GetEvent(ctx context.Context, tenantID, id string) (*model.Event, error) {
	return e.store.GetEvent(ctx, tenantID, id)
}

// ListEvents returns tenant-scoped events for offline auditing and archival.
func (e *Engine) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, int, error) {
	return e.store.ListEvents(ctx, filter)
}
