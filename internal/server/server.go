// Package server exposes the notification engine over HTTP and SSE.
package server

import (
	"log/slog"

	"github.com/threadcraft/pulse/internal/audience"
	"github.com/threadcraft/pulse/internal/events"
	"github.com/threadcraft/pulse/internal/notify"
	"github.com/threadcraft/pulse/internal/sessions"
	"github.com/threadcraft/pulse/internal/store"
)

// PulseServer wires the notification engine to its HTTP surface. Live
// delivery goes through the embedded SSE hub, which doubles as the engine's
// broadcast transport.
type PulseServer struct {
	Engine   *notify.Engine
	Sessions *sessions.Tracker

	store  store.Store
	sseHub *sseHub
	logger *slog.Logger
}

// NewPulseServer returns a PulseServer backed by the given store. The nats
// publisher and audience resolver may be nil; the engine falls back to no-op
// implementations.
func NewPulseServer(st store.Store, resolver audience.Resolver, bus events.Publisher, logger *slog.Logger) *PulseServer {
	if logger == nil {
		logger = slog.Default()
	}
	tracker := sessions.New()
	hub := newSSEHub(tracker)
	return &PulseServer{
		Engine:   notify.NewEngine(st, hub, resolver, bus, logger),
		Sessions: tracker,
		store:    st,
		sseHub:   hub,
		logger:   logger,
	}
}
