package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// eventColumns is the column list used for SELECT statements on the events table.
const eventColumns = `id, tenant_id, event_type, entity_type, entity_id,
	actor_user_id, payload, broadcast_to_users, broadcast_to_roles,
	is_broadcast, processed_at, created_at`

// notificationColumns is the column list used for SELECT statements on the
// notifications table.
const notificationColumns = `id, tenant_id, user_id, type, title, message,
	category, priority, action_url, data, is_read, read_at, expires_at,
	metadata, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateEvent(ctx context.Context, db executor, ev *model.Event) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO events (
			id, tenant_id, event_type, entity_type, entity_id,
			actor_user_id, payload, broadcast_to_users, broadcast_to_roles,
			is_broadcast, processed_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)`,
		ev.ID,
		ev.TenantID,
		ev.EventType,
		string(ev.EntityType),
		ev.EntityID,
		nullString(ev.ActorUserID),
		jsonbBytes(ev.Payload),
		pq.Array(ev.BroadcastToUsers),
		pq.Array(ev.BroadcastToRoles),
		ev.IsBroadcast,
		nullTimePtr(ev.ProcessedAt),
		ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func queryGetEvent(ctx context.Context, db executor, tenantID, id string) (*model.Event, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = $1 AND id = $2`,
		tenantID, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func queryListEvents(ctx context.Context, db executor, filter model.EventFilter) ([]*model.Event, int, error) {
	var (
		args   []any
		argIdx int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	whereClauses := []string{"tenant_id = " + nextArg()}
	args = append(args, filter.TenantID)

	if filter.EntityType != "" {
		whereClauses = append(whereClauses, "entity_type = "+nextArg())
		args = append(args, string(filter.EntityType))
	}
	if filter.EntityID != "" {
		whereClauses = append(whereClauses, "entity_id = "+nextArg())
		args = append(args, filter.EntityID)
	}
	if filter.Processed != nil {
		if *filter.Processed {
			whereClauses = append(whereClauses, "processed_at IS NOT NULL")
		} else {
			whereClauses = append(whereClauses, "processed_at IS NULL")
		}
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	query := "SELECT COUNT(*) OVER() AS total_count, " + eventColumns +
		" FROM events WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	var total int
	for rows.Next() {
		ev, t, err := scanEventWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan events: %w", err)
		}
		total = t
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	return events, total, nil
}

// queryMarkEventProcessed stamps processed_at exactly once. The guard on
// processed_at IS NULL makes later calls no-ops that keep the original
// timestamp.
func queryMarkEventProcessed(ctx context.Context, db executor, tenantID, id string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE events SET processed_at = now()
		WHERE tenant_id = $1 AND id = $2 AND processed_at IS NULL`,
		tenantID, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func queryCreateNotification(ctx context.Context, db executor, n *model.Notification) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, tenant_id, user_id, type, title, message,
			category, priority, action_url, data, is_read, read_at,
			expires_at, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15
		)`,
		n.ID,
		n.TenantID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		string(n.Category),
		string(n.Priority),
		nullString(n.ActionURL),
		jsonbBytes(n.Data),
		n.IsRead,
		nullTimePtr(n.ReadAt),
		nullTimePtr(n.ExpiresAt),
		jsonbBytes(n.Metadata),
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func queryListNotifications(ctx context.Context, db executor, filter model.NotificationFilter) ([]*model.Notification, int, error) {
	var (
		args   []any
		argIdx int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	whereClauses := []string{
		"tenant_id = " + nextArg(),
		"user_id = " + nextArg(),
	}
	args = append(args, filter.TenantID, filter.UserID)

	if filter.Category != "" {
		whereClauses = append(whereClauses, "category = "+nextArg())
		args = append(args, string(filter.Category))
	}
	if filter.Priority != "" {
		whereClauses = append(whereClauses, "priority = "+nextArg())
		args = append(args, string(filter.Priority))
	}
	if filter.IsRead != nil {
		whereClauses = append(whereClauses, "is_read = "+nextArg())
		args = append(args, *filter.IsRead)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultPageSize
	}

	query := "SELECT COUNT(*) OVER() AS total_count, " + notificationColumns +
		" FROM notifications WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY created_at DESC LIMIT " + nextArg()
	args = append(args, limit)

	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []*model.Notification
	var total int
	for rows.Next() {
		n, t, err := scanNotificationWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan notifications: %w", err)
		}
		total = t
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return notifs, total, nil
}

func queryUnreadCount(ctx context.Context, db executor, tenantID, userID string, category model.Category) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND NOT is_read`
	args := []any{tenantID, userID}
	if category != "" {
		query += ` AND category = $3`
		args = append(args, string(category))
	}

	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}

// queryMarkNotificationRead flips the read state of a single notification.
// COALESCE keeps the original read_at when the row was already read, so the
// call is idempotent. Returns store.ErrNotFound when no row matches the
// owner+id pair.
func queryMarkNotificationRead(ctx context.Context, db executor, tenantID, userID, id string) (*model.Notification, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, now())
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING `+notificationColumns,
		tenantID, userID, id)

	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func queryMarkAllNotificationsRead(ctx context.Context, db executor, tenantID, userID string, category model.Category) ([]*model.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = now()
		WHERE tenant_id = $1 AND user_id = $2 AND NOT is_read`
	args := []any{tenantID, userID}
	if category != "" {
		query += ` AND category = $3`
		args = append(args, string(category))
	}
	query += ` RETURNING ` + notificationColumns

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mark all notifications read: %w", err)
	}
	defer rows.Close()

	var notifs []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notifications: %w", err)
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mark all notifications read: %w", err)
	}

	return notifs, nil
}

func queryDeleteNotification(ctx context.Context, db executor, tenantID, userID, id string) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND id = $3`,
		tenantID, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryDeleteExpiredNotifications(ctx context.Context, db executor, createdBefore time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE (expires_at IS NOT NULL AND expires_at < now())
		   OR created_at < $1`,
		createdBefore)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	return affected, nil
}
