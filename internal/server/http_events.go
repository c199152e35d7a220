package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/threadcraft/pulse/internal/model"
)

// publishEventInput is the JSON body of POST /v1/events.
type publishEventInput struct {
	EventType        string           `json:"event_type"`
	EntityType       model.EntityType `json:"entity_type"`
	EntityID         string           `json:"entity_id"`
	Payload          json.RawMessage  `json:"payload,omitempty"`
	BroadcastToUsers []string         `json:"broadcast_to_users,omitempty"`
	BroadcastToRoles []string         `json:"broadcast_to_roles,omitempty"`
	IsBroadcast      *bool            `json:"is_broadcast,omitempty"`
}

// handlePublishEvent handles POST /v1/events: record, broadcast, fan out.
func (s *PulseServer) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in publishEventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev := &model.Event{
		TenantID:         id.TenantID,
		EventType:        in.EventType,
		EntityType:       in.EntityType,
		EntityID:         in.EntityID,
		ActorUserID:      id.UserID,
		Payload:          in.Payload,
		BroadcastToUsers: in.BroadcastToUsers,
		BroadcastToRoles: in.BroadcastToRoles,
		IsBroadcast:      true,
	}
	if in.IsBroadcast != nil {
		ev.IsBroadcast = *in.IsBroadcast
	}

	res, err := s.Engine.Publish(r.Context(), ev)
	if err != nil {
		writeOpError(w, err, "event not found", "failed to publish event")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// handleListEvents handles GET /v1/events (the tenant's event audit log).
func (s *PulseServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.EventFilter{
		TenantID:   id.TenantID,
		EntityType: model.EntityType(q.Get("entity_type")),
		EntityID:   q.Get("entity_id"),
	}
	if v := q.Get("processed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Processed = &b
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

	evts, total, err := s.Engine.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Ensure events is never null in JSON output.
	if evts == nil {
		evts = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": evts,
		"total":  total,
	})
}

// handleGetEvent handles GET /v1/events/{id}.
func (s *PulseServer) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	eventID := r.PathValue("id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	ev, err := s.Engine.GetEvent(r.Context(), id.TenantID, eventID)
	if err != nil {
		writeOpError(w, err, "event not found", "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, ev)
}
