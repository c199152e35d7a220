package archive

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// mockStore implements store.Store for archive tests. Only the event side is
// exercised here; notification methods are stubs.
type mockStore struct {
	mu     sync.Mutex
	events map[string]*model.Event
}

func newMockStore() *mockStore {
	return &mockStore{events: make(map[string]*model.Event)}
}

func (m *mockStore) CreateEvent(_ context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

	var all []*model.Event
	for _, ev := range m.events {
		if ev.TenantID != filter.TenantID {
			continue
		}
		clone := *ev
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			all = nil
		} else {
			all = all[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (m *mockStore) MarkEventProcessed(context.Context, string, string) error { return nil }

func (m *mockStore) CreateNotification(context.Context, *model.Notification) error { return nil }

func (m *mockStore) ListNotifications(context.Context, model.NotificationFilter) ([]*model.Notification, int, error) {
	return nil, 0, nil
}

func (m *mockStore) UnreadCount(context.Context, string, string, model.Category) (int, error) {
	return 0, nil
}

func (m *mockStore) MarkNotificationRead(context.Context, string, string, string) (*model.Notification, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) MarkAllNotificationsRead(context.Context, string, string, model.Category) ([]*model.Notification, error) {
	return nil, nil
}

func (m *mockStore) DeleteNotification(context.Context, string, string, string) error {
	return store.ErrNotFound
}

func (m *mockStore) DeleteExpiredNotifications(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *mockStore) Close() error { return nil }
