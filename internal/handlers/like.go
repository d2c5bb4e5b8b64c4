package handlers

import (
	"net/http"

	"amora-backend/internal/middleware"
	"amora-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LikeHandler handles like/unlike HTTP requests
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// LikeResponse reports whether the like completed a match
type LikeResponse struct {
	Matched bool `json:"matched"`
}

// Like handles POST /api/v1/users/{id}/like
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	receiverID := chi.URLParam(r, "id")

	matched, err := h.likes.Like(r.Context(), principal, receiverID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("sender_id", principal.ID).
		Str("receiver_id", receiverID).
		Bool("matched", matched).
		Msg("Like recorded")
	respondJSON(w, http.StatusOK, LikeResponse{Matched: matched})
}

// Unlike handles DELETE /api/v1/users/{id}/like
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	receiverID := chi.URLParam(r, "id")

	if err := h.likes.Unlike(r.Context(), principal.ID, receiverID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
