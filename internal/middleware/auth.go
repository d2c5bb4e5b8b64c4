package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/models"
	"amora-backend/internal/services"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthMiddleware resolves the bearer credential (session JWT or
// quick-access token) to a Principal and stores it in the request
// context. Handlers never see raw credentials.
func AuthMiddleware(identity *services.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerCredential(r)
			if credential == "" {
				respondError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			principal, err := identity.Resolve(r.Context(), credential)
			if err != nil {
				status := http.StatusUnauthorized
				if apperrors.Is(err, apperrors.CodeUnavailable) {
					status = http.StatusServiceUnavailable
				}
				respondError(w, "invalid credentials", status)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SweepMiddleware guards the scheduler endpoints with a shared secret
// carried in the X-Sweep-Secret header; it is not a user identity.
func SweepMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Sweep-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				respondError(w, "invalid sweep credential", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal extracts the resolved principal from context
func GetPrincipal(ctx context.Context) *models.Principal {
	p, ok := ctx.Value(principalKey).(*models.Principal)
	if !ok {
		return nil
	}
	return p
}

// bearerCredential pulls the token from the Authorization header
func bearerCredential(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
