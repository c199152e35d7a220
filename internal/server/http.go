package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/threadcraft/pulse/internal/model"
	"github.com/threadcraft/pulse/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header. When jwtSecret is non-empty
// and no static token is configured, caller identity is taken from signed JWT
// claims instead of headers.
func (s *PulseServer) NewHTTPHandler(authToken, jwtSecret string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/events", s.handlePublishEvent)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("GET /v1/events/{id}", s.handleGetEvent)
	mux.HandleFunc("GET /v1/notifications", s.handleListNotifications)
	mux.HandleFunc("GET /v1/notifications/unread-count", s.handleUnreadCount)
	mux.HandleFunc("POST /v1/notifications/{id}/read", s.handleMarkRead)
	mux.HandleFunc("POST /v1/notifications/read-all", s.handleMarkAllRead)
	mux.HandleFunc("DELETE /v1/notifications/{id}", s.handleDeleteNotification)
	mux.HandleFunc("POST /v1/notifications/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("GET /v1/sessions", s.handleSessionRoster)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	// A static token occupies the Authorization header, so identity cannot
	// also arrive there as a JWT; static-token deployments use header identity.
	if authToken != "" {
		jwtSecret = ""
	}
	return AuthMiddleware(authToken, IdentityMiddleware(jwtSecret, mux))
}

// handleHealth handles GET /v1/health.
func (s *PulseServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeOpError maps engine/store errors onto HTTP status codes: validation
// failures are the caller's fault, missing rows are 404, everything else is
// a 500 with the generic message (internal detail stays in the logs).
func writeOpError(w http.ResponseWriter, err error, notFoundMsg, internalMsg string) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	writeError(w, http.StatusInternalServerError, internalMsg)
}
