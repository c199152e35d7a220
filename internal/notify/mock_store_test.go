package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// mockStore is an in-memory store.Store used by the engine tests.
type mockStore struct {
	mu     sync.Mutex
	events map[string]*model.Event
	notifs map[string]*model.Notification

	// createEventErr, when non-nil, is returned by CreateEvent.
	createEventErr error
	// notifErrFor maps user IDs to errors returned by CreateNotification
	// (for testing per-recipient isolation).
	notifErrFor map[string]error
	// markProcessedErr, when non-nil, is returned by MarkEventProcessed.
	markProcessedErr error
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		events: make(map[string]*model.Event),
		notifs: make(map[string]*model.Notification),
	}
}

func (m *mockStore) CreateEvent(_ context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createEventErr != nil {
		return m.createEventErr
	}
	clone := *ev
	m.events[ev.ID] = &clone
	return nil
}

func (m *mockStore) GetEvent(_ context.Context, tenantID, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok || ev.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	clone := *ev
	return &clone, nil
}

func (m *mockStore) ListEvents(_ context.Context, filter model.EventFilter) ([]*model.Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Event
	for _, ev := range m.events {
		if ev.TenantID != filter.TenantID {
			continue
		}
		if filter.EntityType != "" && ev.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && ev.EntityID != filter.EntityID {
			continue
		}
		if filter.Processed != nil && (ev.ProcessedAt != nil) != *filter.Processed {
			continue
		}
		clone := *ev
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *mockStore) MarkEventProcessed(_ context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markProcessedErr != nil {
		return m.markProcessedErr
	}
	ev, ok := m.events[id]
	if !ok || ev.TenantID != tenantID {
		return nil
	}
	// First write wins, matching the guarded UPDATE in the real store.
	if ev.ProcessedAt == nil {
		now := time.Now().UTC()
		ev.ProcessedAt = &now
	}
	return nil
}

func (m *mockStore) CreateNotification(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.notifErrFor[n.UserID]; err != nil {
		return err
	}
	clone := *n
	m.notifs[n.ID] = &clone
	return nil
}

func (m *mockStore) ListNotifications(_ context.Context, filter model.NotificationFilter) ([]*model.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.Notification
	for _, n := range m.notifs {
		if n.TenantID != filter.TenantID || n.UserID != filter.UserID {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		if filter.Priority != "" && n.Priority != filter.Priority {
			continue
		}
		if filter.IsRead != nil && n.IsRead != *filter.IsRead {
			continue
		}
		clone := *n
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			all = nil
		} else {
			all = all[filter.Offset:]
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockStore) UnreadCount(_ context.Context, tenantID, userID string, category model.Category) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifs {
		if n.TenantID != tenantID || n.UserID != userID || n.IsRead {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		count++
	}
	return count, nil
}

func (m *mockStore) MarkNotificationRead(_ context.Context, tenantID, userID, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifs[id]
	if !ok || n.TenantID != tenantID || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	if !n.IsRead {
		now := time.Now().UTC()
		n.IsRead = true
		n.ReadAt = &now
	}
	clone := *n
	return &clone, nil
}

func (m *mockStore) MarkAllNotificationsRead(_ context.Context, tenantID, userID string, category model.Category) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	var updated []*model.Notification
	for _, n := range m.notifs {
		if n.TenantID != tenantID || n.UserID != userID || n.IsRead {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
		clone := *n
		updated = append(updated, &clone)
	}
	return updated, nil
}

func (m *mockStore) DeleteNotification(_ context.Context, tenantID, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifs[id]
	if !ok || n.TenantID != tenantID || n.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.notifs, id)
	return nil
}

func (m *mockStore) DeleteExpiredNotifications(_ context.Context, createdBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	var deleted int64
	for id, n := range m.notifs {
		expired := n.ExpiresAt != nil && n.ExpiresAt.Before(now)
		if expired || n.CreatedAt.Before(createdBefore) {
			delete(m.notifs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockStore) Close() error { return nil }

// notificationsFor returns the stored notifications for one inbox, for test
// assertions.
func (m *mockStore) notificationsFor(tenantID, userID string) []*model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.notifs {
		if n.TenantID == tenantID && n.UserID == userID {
			clone := *n
			out = append(out, &clone)
		}
	}
	return out
}
