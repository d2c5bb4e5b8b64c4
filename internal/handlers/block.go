package handlers

import (
	"net/http"

	"amora-backend/internal/middleware"
	"amora-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// BlockHandler handles block/unblock HTTP requests
type BlockHandler struct {
	blocks *services.BlockService
}

// NewBlockHandler creates a new block handler
func NewBlockHandler(blocks *services.BlockService) *BlockHandler {
	return &BlockHandler{blocks: blocks}
}

// Block handles POST /api/v1/users/{id}/block
func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	blockedID := chi.URLParam(r, "id")

	if err := h.blocks.Block(r.Context(), principal.ID, blockedID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("blocker_id", principal.ID).
		Str("blocked_id", blockedID).
		Msg("Block recorded")
	w.WriteHeader(http.StatusNoContent)
}

// Unblock handles DELETE /api/v1/users/{id}/block
func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	blockedID := chi.URLParam(r, "id")

	if err := h.blocks.Unblock(r.Context(), principal.ID, blockedID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBlocked handles GET /api/v1/blocks
func (h *BlockHandler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	blocked, err := h.blocks.ListBlocked(r.Context(), principal.ID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, blocked)
}
