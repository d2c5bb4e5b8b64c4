package services

import (
	"context"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/clock"
	"amora-backend/internal/models"
)

// LikeService records one-directional likes and derives matches. A match
// is never stored; it is recomputed from the two edges so an unlike can
// never leave it stale.
type LikeService struct {
	likes         LikeStore
	blocks        BlockStore
	principals    PrincipalStore
	notifications *NotificationService
	clock         clock.Clock
}

// NewLikeService creates a new like service
func NewLikeService(likes LikeStore, blocks BlockStore, principals PrincipalStore, notifications *NotificationService, clk clock.Clock) *LikeService {
	return &LikeService{
		likes:         likes,
		blocks:        blocks,
		principals:    principals,
		notifications: notifications,
		clock:         clk,
	}
}

// Like inserts the directed edge. Likes require durable identity on both
// sides. On success either a match notification goes to both sides or a
// new-like notification to the receiver.
func (s *LikeService) Like(ctx context.Context, sender *models.Principal, receiverID string) (matched bool, err error) {
	if sender.ID == receiverID {
		return false, apperrors.ErrSelfAction
	}
	if sender.IsQuickAccess() {
		return false, apperrors.ErrQuickAccessLike
	}

	receiver, err := s.principals.GetByID(ctx, receiverID)
	if err != nil {
		return false, err
	}
	if receiver.IsQuickAccess() {
		return false, apperrors.ErrQuickAccessLike
	}

	blocked, err := s.blocks.IsBlocked(ctx, sender.ID, receiverID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, apperrors.ErrBlocked
	}

	like := &models.Like{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.likes.Create(ctx, like); err != nil {
		return false, err
	}

	reciprocal, err := s.likes.Exists(ctx, receiverID, sender.ID)
	if err != nil {
		return false, err
	}

	if reciprocal {
		if err := s.notifications.Notify(ctx, sender.ID, models.NotificationMatch, receiverID); err != nil {
			return true, err
		}
		return true, s.notifications.Notify(ctx, receiverID, models.NotificationMatch, sender.ID)
	}
	return false, s.notifications.Notify(ctx, receiverID, models.NotificationLike, sender.ID)
}

// Unlike removes the directed edge; removing a missing edge succeeds and
// nobody is notified.
func (s *LikeService) Unlike(ctx context.Context, senderID, receiverID string) error {
	if senderID == receiverID {
		return apperrors.ErrSelfAction
	}
	return s.likes.Delete(ctx, senderID, receiverID)
}

// IsMatch recomputes the match condition from the two edges
func (s *LikeService) IsMatch(ctx context.Context, a, b string) (bool, error) {
	forward, err := s.likes.Exists(ctx, a, b)
	if err != nil || !forward {
		return false, err
	}
	return s.likes.Exists(ctx, b, a)
}
