// Package client provides a transport-agnostic interface for the pulse
// service and an HTTP/JSON implementation that talks to the pulse REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/notify"
	"github.com/threadcraft/pulse/internal/sessions"
)

// PulseClient is the interface that all pulse CLI commands use to communicate
// with the pulse server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type PulseClient interface {
	// Events
	PublishEvent(ctx context.Context, req *PublishEventRequest) (*PublishEventResponse, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error)

	// Notifications
	ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error)
	UnreadCount(ctx context.Context, category string) (int, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, category string) (int, error)
	DeleteNotification(ctx context.Context, id string) error
	Cleanup(ctx context.Context) (int64, error)

	// Sessions
	SessionRoster(ctx context.Context) (*SessionRosterResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// PublishEventRequest holds parameters for publishing an event.
type PublishEventRequest struct {
	EventType        string          `json:"event_type"`
	EntityType       string          `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	Payload          json.RawMessage `json:"payload,omitempty"`
	BroadcastToUsers []string        `json:"broadcast_to_users,omitempty"`
	BroadcastToRoles []string        `json:"broadcast_to_roles,omitempty"`
	IsBroadcast      *bool           `json:"is_broadcast,omitempty"`
}

// PublishEventResponse is the response from PublishEvent.
type PublishEventResponse struct {
	Event  *model.Event        `json:"event"`
	FanOut notify.FanOutResult `json:"fan_out"`
}

// ListEventsRequest holds filters for the event audit log.
type ListEventsRequest struct {
	EntityType string
	EntityID   string
	Processed  *bool
	Limit      int
	Offset     int
}

// ListEventsResponse is the response from ListEvents.
type ListEventsResponse struct {
	Events []*model.Event `json:"events"`
	Total  int            `json:"total"`
}

// ListNotificationsRequest holds filters for the inbox listing.
type ListNotificationsRequest struct {
	Category string
	Priority string
	Unread   *bool
	Limit    int
	Offset   int
}

// ListNotificationsResponse is the response from ListNotifications.
type ListNotificationsResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	Total         int                   `json:"total"`
}

// SessionRosterResponse is the response from SessionRoster.
type SessionRosterResponse struct {
	Sessions []sessions.Entry `json:"sessions"`
	Count    int              `json:"count"`
}
