package handlers

import (
	"net/http"

	"amora-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SweepHandler exposes the batch correction jobs to the external
// scheduler. Both sweeps are safe to run concurrently with live traffic
// and with each other.
type SweepHandler struct {
	presence  *services.PresenceService
	lifecycle *services.LifecycleService
}

// NewSweepHandler creates a new sweep handler
func NewSweepHandler(presence *services.PresenceService, lifecycle *services.LifecycleService) *SweepHandler {
	return &SweepHandler{presence: presence, lifecycle: lifecycle}
}

// SweepResponse reports how many rows the sweep touched
type SweepResponse struct {
	Affected int64 `json:"affected"`
}

// SweepPresence handles POST /internal/sweep/presence
func (h *SweepHandler) SweepPresence(w http.ResponseWriter, r *http.Request) {
	stale, err := h.presence.SweepStale(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Presence sweep failed")
		respondAppError(w, err)
		return
	}

	if stale > 0 {
		log.Info().Int("stale", stale).Msg("Presence sweep marked principals offline")
	}
	respondJSON(w, http.StatusOK, SweepResponse{Affected: int64(stale)})
}

// SweepMessages handles POST /internal/sweep/messages
func (h *SweepHandler) SweepMessages(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.lifecycle.SweepExpired(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Expiration sweep failed")
		respondAppError(w, err)
		return
	}

	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Expiration sweep removed messages")
	}
	respondJSON(w, http.StatusOK, SweepResponse{Affected: deleted})
}
