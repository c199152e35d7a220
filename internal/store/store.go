package store

import (
	"context"
	"errors"
	"time"

	"github.com/threadcraft/pulse/internal/model"
)

// ErrNotFound is returned when a scoped read or update matches no row.
// A wrong owner and a wrong id are indistinguishable to callers on purpose.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for events and notifications.
// Every operation is tenant-scoped by its arguments; the store never applies
// implicit scoping of its own.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, ev *model.Event) error
	GetEvent(ctx context.Context, tenantID, id string) (*model.Event, error)
	ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, int, error) // returns events, total count, error
	// MarkEventProcessed stamps processed_at on an event. The first call wins;
	// later calls are no-ops and leave the original timestamp intact.
	MarkEventProcessed(ctx context.Context, tenantID, id string) error

	// Notifications
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, int, error)
	UnreadCount(ctx context.Context, tenantID, userID string, category model.Category) (int, error)
	MarkNotificationRead(ctx context.Context, tenantID, userID, id string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, tenantID, userID string, category model.Category) ([]*model.Notification, error)
	DeleteNotification(ctx context.Context, tenantID, userID, id string) error
	// DeleteExpiredNotifications removes rows whose expires_at has passed or
	// whose created_at is older than the cutoff. Returns the number deleted.
	DeleteExpiredNotifications(ctx context.Context, createdBefore time.Time) (int64, error)

	// Lifecycle
	Close() error
}
