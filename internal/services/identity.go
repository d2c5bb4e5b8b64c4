package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/clock"
	"amora-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 30

// IdentityService resolves inbound credentials to a single canonical
// Principal and owns account creation and deletion. Downstream components
// only ever see the resolved Principal, never raw credentials.
type IdentityService struct {
	principals PrincipalStore
	tokens     TokenStore
	presence   *PresenceService
	likes      LikeStore
	blocks     BlockStore
	notifs     NotificationStore
	convs      ConversationStore
	clock      clock.Clock
	jwtSecret  string
	quickTTL   time.Duration
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	principals PrincipalStore,
	tokens TokenStore,
	presence *PresenceService,
	likes LikeStore,
	blocks BlockStore,
	notifs NotificationStore,
	convs ConversationStore,
	clk clock.Clock,
	jwtSecret string,
	quickTTL time.Duration,
) *IdentityService {
	return &IdentityService{
		principals: principals,
		tokens:     tokens,
		presence:   presence,
		likes:      likes,
		blocks:     blocks,
		notifs:     notifs,
		convs:      convs,
		clock:      clk,
		jwtSecret:  jwtSecret,
		quickTTL:   quickTTL,
	}
}

// Register creates a durable registered principal and issues a session
// token.
func (s *IdentityService) Register(ctx context.Context, displayName, email, password string) (*models.Principal, string, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.ToLower(strings.TrimSpace(email))
	if displayName == "" {
		return nil, "", apperrors.InvalidInput("display name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperrors.InvalidInput("a valid email is required")
	}
	if len(password) < 8 {
		return nil, "", apperrors.InvalidInput("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	p := &models.Principal{
		ID:           uuid.New().String(),
		DisplayName:  displayName,
		Kind:         models.KindRegistered,
		Email:        &email,
		PasswordHash: string(hash),
		Online:       true,
		LastSeenAt:   now,
		CreatedAt:    now,
	}
	if err := s.principals.Create(ctx, p); err != nil {
		return nil, "", err
	}

	session, err := s.generateJWT(p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, session, nil
}

// Login authenticates a registered principal and issues a session token
func (s *IdentityService) Login(ctx context.Context, email, password string) (*models.Principal, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, "", apperrors.ErrBadCredentials
		}
		return nil, "", err
	}
	if p.Banned {
		return nil, "", apperrors.ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, "", apperrors.ErrBadCredentials
	}

	if err := s.presence.Touch(ctx, p); err != nil {
		return nil, "", err
	}

	session, err := s.generateJWT(p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, session, nil
}

// ProvisionQuickAccess creates an ephemeral principal with a bearer token
// as its only credential. There is no recovery path once the token is
// gone.
func (s *IdentityService) ProvisionQuickAccess(ctx context.Context, displayName string) (*models.Principal, string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, "", apperrors.InvalidInput("display name is required")
	}

	now := s.clock.Now()
	p := &models.Principal{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Kind:        models.KindQuickAccess,
		Online:      true,
		LastSeenAt:  now,
		CreatedAt:   now,
	}
	if err := s.principals.Create(ctx, p); err != nil {
		return nil, "", err
	}

	token, err := newBearerToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.tokens.Save(ctx, token, p.ID, s.quickTTL); err != nil {
		return nil, "", err
	}
	return p, token, nil
}

// Resolve maps a bearer credential to a Principal. The session path is
// tried first, then the quick-access token. Resolution is a side-effecting
// read: it refreshes presence, which for registered principals also clears
// pending message expirations. There is no separate heartbeat for
// quick-access users; each authenticated request is the heartbeat.
func (s *IdentityService) Resolve(ctx context.Context, credential string) (*models.Principal, error) {
	if credential == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	if principalID, err := s.validateJWT(credential); err == nil {
		p, err := s.principals.GetByID(ctx, principalID)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeUnavailable) {
				return nil, err
			}
			return nil, apperrors.ErrUnauthenticated
		}
		if p.Banned {
			return nil, apperrors.ErrUnauthenticated
		}
		if err := s.presence.Touch(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	principalID, err := s.tokens.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeUnavailable) {
			return nil, err
		}
		// Not distinguished from an expired token to avoid leaking
		// account existence.
		return nil, apperrors.ErrInvalidToken
	}
	if p.Banned {
		return nil, apperrors.ErrInvalidToken
	}
	if err := s.presence.Touch(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Logout marks the principal offline and triggers lifecycle scheduling
func (s *IdentityService) Logout(ctx context.Context, p *models.Principal) error {
	return s.presence.MarkOffline(ctx, p)
}

// DeleteAccount removes the principal and everything that references it.
// The conversation cascade schedules the messages; the sweep collects
// them.
func (s *IdentityService) DeleteAccount(ctx context.Context, p *models.Principal) error {
	if _, err := s.convs.PurgeForPrincipal(ctx, p.ID, s.clock.Now()); err != nil {
		return err
	}
	if err := s.likes.DeleteFor(ctx, p.ID); err != nil {
		return err
	}
	if err := s.blocks.DeleteFor(ctx, p.ID); err != nil {
		return err
	}
	if err := s.notifs.DeleteFor(ctx, p.ID); err != nil {
		return err
	}
	if p.IsQuickAccess() {
		if err := s.tokens.DeleteForPrincipal(ctx, p.ID); err != nil {
			return err
		}
	}
	return s.principals.Delete(ctx, p.ID)
}

// generateJWT issues a session token for a registered principal
func (s *IdentityService) generateJWT(principalID string) (string, error) {
	claims := jwt.MapClaims{
		"principal_id": principalID,
		"exp":          s.clock.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":          s.clock.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// validateJWT validates a session token and returns the principal id
func (s *IdentityService) validateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	principalID, ok := claims["principal_id"].(string)
	if !ok {
		return "", fmt.Errorf("principal_id not found in token")
	}
	return principalID, nil
}

// newBearerToken generates an opaque quick-access credential
func newBearerToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
