package notify

import (
	"context"
	"time"

	"github.com/threadcraft/pulse/internal/model"
)

// ListNotifications returns one page of a user's inbox, newest first, with
// the total count of matching rows.
func (e *Engine) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, int, error) {
	return e.store.ListNotifications(ctx, filter)
}

// UnreadCount returns the number of unread notifications in a user's inbox,
// optionally narrowed to one category.
func (e *Engine) UnreadCount(ctx context.Context, tenantID, userID string, category model.Category) (int, error) {
	return e.store.UnreadCount(ctx, tenantID, userID, category)
}

// MarkAsRead marks a single notification read on behalf of its owner.
// Returns store.ErrNotFound when the id does not exist or belongs to someone
// else; callers cannot tell the two cases apart.
func (e *Engine) MarkAsRead(ctx context.Context, tenantID, userID, id string) (*model.Notification, error) {
	return e.store.MarkNotificationRead(ctx, tenantID, userID, id)
}

// MarkAllAsRead marks every unread notification in the user's inbox read,
// optionally narrowed to one category, and returns the updated rows.
func (e *Engine) MarkAllAsRead(ctx context.Context, tenantID, userID string, category model.Category) ([]*model.Notification, error) {
	return e.store.MarkAllNotificationsRead(ctx, tenantID, userID, category)
}

// DeleteNotification removes a single notification on behalf of its owner.
func (e *Engine) DeleteNotification(ctx context.Context, tenantID, userID, id string) error {
	return e.store.DeleteNotification(ctx, tenantID, userID, id)
}

// CleanupExpired deletes notifications past their explicit expiry or older
// than the retention window. Idempotent: a run with nothing eligible deletes
// zero rows. Invoked by the retention scheduler or an external cron.
func (e *Engine) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-e.retention)
	deleted, err := e.store.DeleteExpiredNotifications(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		e.logger.Info("expired notifications deleted", "count", deleted)
	}
	return deleted, nil
}
