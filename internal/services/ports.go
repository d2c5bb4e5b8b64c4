package services

import (
	"context"
	"time"

	"amora-backend/internal/models"
)

// Store interfaces are defined here, on the consumer side, so tests can
// substitute in-memory fakes for the pgx and redis repositories.

// PrincipalStore persists principals and their presence state
type PrincipalStore interface {
	Create(ctx context.Context, p *models.Principal) error
	GetByID(ctx context.Context, id string) (*models.Principal, error)
	GetByEmail(ctx context.Context, email string) (*models.Principal, error)
	SetPresence(ctx context.Context, id string, online bool, at time.Time) error
	MarkStaleOffline(ctx context.Context, cutoff, now time.Time) ([]models.Principal, error)
	ListOnline(ctx context.Context, viewerID string, limit, offset int) ([]models.Principal, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore persists directed like edges
type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, senderID, receiverID string) error
	Exists(ctx context.Context, senderID, receiverID string) (bool, error)
	DeleteBetween(ctx context.Context, a, b string) error
	DeleteFor(ctx context.Context, principalID string) error
}

// BlockStore persists directed block edges
type BlockStore interface {
	Create(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, a, b string) (bool, error)
	ListBlockedBy(ctx context.Context, blockerID string) ([]models.Principal, error)
	DeleteFor(ctx context.Context, principalID string) error
}

// ConversationStore persists conversations and participant rows
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	GetByPair(ctx context.Context, userAID, userBID string) (*models.Conversation, error)
	GetParticipant(ctx context.Context, conversationID, principalID string) (*models.ConversationParticipant, error)
	ListFor(ctx context.Context, principalID string) ([]models.ConversationSummary, error)
	SetArchived(ctx context.Context, conversationID, principalID string, archived bool) error
	SetLastRead(ctx context.Context, conversationID, principalID string, at time.Time) error
	Touch(ctx context.Context, conversationID string, at time.Time) error
	PurgeForPrincipal(ctx context.Context, principalID string, now time.Time) (int64, error)
}

// MessageStore persists messages and their expiration state
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	ScheduleForPrincipal(ctx context.Context, principalID string, expiresAt time.Time) (int64, error)
	ClearSchedulesForPrincipal(ctx context.Context, principalID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListFor(ctx context.Context, ownerID string, limit, offset int) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, ownerID string) error
	DeleteFor(ctx context.Context, ownerID string) error
}

// TokenStore maps quick-access bearer tokens to principal ids
type TokenStore interface {
	Save(ctx context.Context, token, principalID string, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (string, error)
	DeleteForPrincipal(ctx context.Context, principalID string) error
}
