package server

import (
	"net/http"
	"strconv"

	"github.com/threadcraft/pulse/internal/model"
)

// handleListNotifications handles GET /v1/notifications (the caller's inbox).
func (s *PulseServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.NotificationFilter{
		TenantID: id.TenantID,
		UserID:   id.UserID,
		Category: model.Category(q.Get("category")),
		Priority: model.Priority(q.Get("priority")),
	}
	if v := q.Get("unread"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			isRead := !b
			filter.IsRead = &isRead
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	notifs, total, err := s.Engine.ListNotifications(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	// Ensure notifications is never null in JSON output.
	if notifs == nil {
		notifs = []*model.Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifs,
		"total":         total,
	})
}

// handleUnreadCount handles GET /v1/notifications/unread-count.
func (s *PulseServer) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	category := model.Category(r.URL.Query().Get("category"))
	count, err := s.Engine.UnreadCount(r.Context(), id.TenantID, id.UserID, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count unread notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// handleMarkRead handles POST /v1/notifications/{id}/read.
func (s *PulseServer) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifID := r.PathValue("id")
	if notifID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	n, err := s.Engine.MarkAsRead(r.Context(), id.TenantID, id.UserID, notifID)
	if err != nil {
		writeOpError(w, err, "notification not found", "failed to mark notification read")
		return
	}

	writeJSON(w, http.StatusOK, n)
}

// handleMarkAllRead handles POST /v1/notifications/read-all. An optional
// category query param narrows the sweep.
func (s *PulseServer) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	category := model.Category(r.URL.Query().Get("category"))
	updated, err := s.Engine.MarkAllAsRead(r.Context(), id.TenantID, id.UserID, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	if updated == nil {
		updated = []*model.Notification{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updated":       len(updated),
		"notifications": updated,
	})
}

// handleDeleteNotification handles DELETE /v1/notifications/{id}.
func (s *PulseServer) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := requireUser(w, r)
	if !ok {
		return
	}

	notifID := r.PathValue("id")
	if notifID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.Engine.DeleteNotification(r.Context(), id.TenantID, id.UserID, notifID); err != nil {
		writeOpError(w, err, "notification not found", "failed to delete notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCleanup handles POST /v1/notifications/cleanup: an on-demand run of
// the retention sweep, same semantics as the background sweeper.
func (s *PulseServer) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	deleted, err := s.Engine.CleanupExpired(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clean up notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
