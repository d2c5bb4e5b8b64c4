package handlers

import (
	"encoding/json"
	"net/http"

	"amora-backend/internal/middleware"
	"amora-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConversationHandler handles conversation and message HTTP requests
type ConversationHandler struct {
	conversations *services.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// SendMessageRequest is the body for POST /api/v1/conversations/{id}/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// GetOrCreate handles POST /api/v1/conversations/with/{id}
func (h *ConversationHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	otherID := chi.URLParam(r, "id")

	conv, err := h.conversations.GetOrCreate(r.Context(), principal, otherID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	summaries, err := h.conversations.ListFor(r.Context(), principal.ID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// Archive handles DELETE /api/v1/conversations/{id}
func (h *ConversationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	conversationID := chi.URLParam(r, "id")

	if err := h.conversations.Archive(r.Context(), principal.ID, conversationID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("principal_id", principal.ID).
		Str("conversation_id", conversationID).
		Msg("Conversation archived")
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /api/v1/conversations/{id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	conversationID := chi.URLParam(r, "id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.conversations.SendMessage(r.Context(), principal, conversationID, req.Content)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("sender_id", principal.ID).
		Str("conversation_id", conversationID).
		Str("message_id", msg.ID).
		Msg("Message sent")
	respondJSON(w, http.StatusCreated, msg)
}

// ListMessages handles GET /api/v1/conversations/{id}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	conversationID := chi.URLParam(r, "id")

	msgs, err := h.conversations.ListMessages(r.Context(), principal, conversationID, pageParam(r))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}
