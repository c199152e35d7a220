package server

import (
	"net/http"

	"github.com/threadcraft/pulse/internal/sessions"
)

// handleSessionRoster handles GET /v1/sessions.
// Returns the tenant's live stream sessions from the session tracker.
func (s *PulseServer) handleSessionRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	entries := s.Sessions.Roster(id.TenantID)
	if entries == nil {
		entries = []sessions.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": entries,
		"count":    len(entries),
	})
}
