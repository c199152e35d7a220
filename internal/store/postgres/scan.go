package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/threadcraft/pulse/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// eventDest returns the scan destinations for the standard event columns,
// plus a finish func that copies nullable values into the model.
func eventDest(ev *model.Event) ([]any, func()) {
	var (
		actor       sql.NullString
		payload     []byte
		toUsers     pq.StringArray
		toRoles     pq.StringArray
		processedAt sql.NullTime
	)

	dest := []any{
		&ev.ID,
		&ev.TenantID,
		&ev.EventType,
		&ev.EntityType,
		&ev.EntityID,
		&actor,
		&payload,
		&toUsers,
		&toRoles,
		&ev.IsBroadcast,
		&processedAt,
		&ev.CreatedAt,
	}

	finish := func() {
		ev.ActorUserID = actor.String
		if len(payload) > 0 {
			ev.Payload = json.RawMessage(payload)
		}
		ev.BroadcastToUsers = []string(toUsers)
		ev.BroadcastToRoles = []string(toRoles)
		if processedAt.Valid {
			t := processedAt.Time
			ev.ProcessedAt = &t
		}
	}

	return dest, finish
}

// scanEvent scans a single row into a model.Event.
// The row must contain columns in the order defined by eventColumns.
func scanEvent(row scannable) (*model.Event, error) {
	var ev model.Event
	dest, finish := eventDest(&ev)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finish()
	return &ev, nil
}

// scanEventWithTotal scans a row that has a leading total_count column
// followed by the standard event columns. Used by queryListEvents with
// COUNT(*) OVER().
func scanEventWithTotal(row scannable) (*model.Event, int, error) {
	var total int
	var ev model.Event
	dest, finish := eventDest(&ev)
	if err := row.Scan(append([]any{&total}, dest...)...); err != nil {
		return nil, 0, err
	}
	finish()
	return &ev, total, nil
}

// notificationDest returns the scan destinations for the standard
// notification columns, plus a finish func for the nullable values.
func notificationDest(n *model.Notification) ([]any, func()) {
	var (
		actionURL sql.NullString
		data      []byte
		readAt    sql.NullTime
		expiresAt sql.NullTime
		metadata  []byte
	)

	dest := []any{
		&n.ID,
		&n.TenantID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Category,
		&n.Priority,
		&actionURL,
		&data,
		&n.IsRead,
		&readAt,
		&expiresAt,
		&metadata,
		&n.CreatedAt,
	}

	finish := func() {
		n.ActionURL = actionURL.String
		if len(data) > 0 {
			n.Data = json.RawMessage(data)
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			n.ExpiresAt = &t
		}
		if len(metadata) > 0 {
			n.Metadata = json.RawMessage(metadata)
		}
	}

	return dest, finish
}

// scanNotification scans a single row into a model.Notification.
func scanNotification(row scannable) (*model.Notification, error) {
	var n model.Notification
	dest, finish := notificationDest(&n)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finish()
	return &n, nil
}

// scanNotificationWithTotal scans a row with a leading total_count column.
func scanNotificationWithTotal(row scannable) (*model.Notification, int, error) {
	var total int
	var n model.Notification
	dest, finish := notificationDest(&n)
	if err := row.Scan(append([]any{&total}, dest...)...); err != nil {
		return nil, 0, err
	}
	finish()
	return &n, total, nil
}

// nullString converts an empty string to a NULL-valued sql.NullString.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTimePtr converts a *time.Time to sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// jsonbBytes converts a json.RawMessage to a value suitable for a JSONB
// column, mapping empty to NULL.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
