package handlers

import (
	"net/http"

	"amora-backend/internal/middleware"
	"amora-backend/internal/services"
)

// PresenceHandler handles heartbeat and online-listing HTTP requests
type PresenceHandler struct {
	presence *services.PresenceService
}

// NewPresenceHandler creates a new presence handler
func NewPresenceHandler(presence *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// Heartbeat handles POST /api/v1/heartbeat. Resolution already touched
// presence; the endpoint exists so idle tabs have something cheap to
// poll.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// ListOnline handles GET /api/v1/users/online
func (h *PresenceHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	online, err := h.presence.ListOnline(r.Context(), principal.ID, pageParam(r))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, online)
}
