package handlers

import (
	"encoding/json"
	"net/http"

	"amora-backend/internal/middleware"
	"amora-backend/internal/models"
	"amora-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account lifecycle HTTP requests
type AuthHandler struct {
	identity *services.IdentityService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterRequest is the body for POST /api/v1/auth/register
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest is the body for POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// QuickAccessRequest is the body for POST /api/v1/auth/quick
type QuickAccessRequest struct {
	DisplayName string `json:"display_name"`
}

// AuthResponse carries the principal and its credential
type AuthResponse struct {
	Principal *models.Principal `json:"principal"`
	Token     string            `json:"token"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal, token, err := h.identity.Register(r.Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to register")
		respondAppError(w, err)
		return
	}

	log.Info().Str("principal_id", principal.ID).Msg("Principal registered")
	respondJSON(w, http.StatusCreated, AuthResponse{Principal: principal, Token: token})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal, token, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("principal_id", principal.ID).Msg("Principal logged in")
	respondJSON(w, http.StatusOK, AuthResponse{Principal: principal, Token: token})
}

// QuickAccess handles POST /api/v1/auth/quick
func (h *AuthHandler) QuickAccess(w http.ResponseWriter, r *http.Request) {
	var req QuickAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	principal, token, err := h.identity.ProvisionQuickAccess(r.Context(), req.DisplayName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to provision quick access")
		respondAppError(w, err)
		return
	}

	log.Info().Str("principal_id", principal.ID).Msg("Quick-access principal provisioned")
	respondJSON(w, http.StatusCreated, AuthResponse{Principal: principal, Token: token})
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.GetPrincipal(r.Context()))
}

// Logout handles POST /api/v1/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	if err := h.identity.Logout(r.Context(), principal); err != nil {
		log.Error().Err(err).Str("principal_id", principal.ID).Msg("Failed to log out")
		respondAppError(w, err)
		return
	}

	log.Info().Str("principal_id", principal.ID).Msg("Principal logged out")
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/v1/me
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	if err := h.identity.DeleteAccount(r.Context(), principal); err != nil {
		log.Error().Err(err).Str("principal_id", principal.ID).Msg("Failed to delete account")
		respondAppError(w, err)
		return
	}

	log.Info().Str("principal_id", principal.ID).Msg("Account deleted")
	w.WriteHeader(http.StatusNoContent)
}
