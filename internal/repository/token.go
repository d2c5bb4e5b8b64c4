package repository

import (
	"context"
	"errors"
	"time"

	"amora-backend/internal/apperrors"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix     = "qat:"
	principalKeyPrefix = "qat:principal:"
)

// TokenRepository stores quick-access bearer tokens in redis. Tokens are
// the only credential an ephemeral principal has; the TTL bounds how long
// an abandoned session stays resolvable.
type TokenRepository struct {
	client *redis.Client
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

// Save stores both directions of the token mapping with the same TTL
func (r *TokenRepository) Save(ctx context.Context, token, principalID string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+token, principalID, ttl)
	pipe.Set(ctx, principalKeyPrefix+principalID, token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("failed to save quick-access token", err)
	}
	return nil
}

// Resolve maps a bearer token to a principal id. A missing token is not
// distinguished from an expired one.
func (r *TokenRepository) Resolve(ctx context.Context, token string) (string, error) {
	principalID, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrInvalidToken
		}
		return "", storeErr("failed to resolve quick-access token", err)
	}
	return principalID, nil
}

// DeleteForPrincipal drops the principal's token, if any
func (r *TokenRepository) DeleteForPrincipal(ctx context.Context, principalID string) error {
	token, err := r.client.Get(ctx, principalKeyPrefix+principalID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return storeErr("failed to look up quick-access token", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKeyPrefix+token)
	pipe.Del(ctx, principalKeyPrefix+principalID)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("failed to delete quick-access token", err)
	}
	return nil
}
