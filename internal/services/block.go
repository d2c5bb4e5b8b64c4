package services

import (
	"context"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/clock"
	"amora-backend/internal/models"
)

// BlockService owns the symmetric block relation. A block in either
// direction suppresses all interaction; history is never deleted, only
// hidden from listings going forward.
type BlockService struct {
	blocks     BlockStore
	likes      LikeStore
	principals PrincipalStore
	clock      clock.Clock
}

// NewBlockService creates a new block service
func NewBlockService(blocks BlockStore, likes LikeStore, principals PrincipalStore, clk clock.Clock) *BlockService {
	return &BlockService{
		blocks:     blocks,
		likes:      likes,
		principals: principals,
		clock:      clk,
	}
}

// Block inserts the directed edge and retracts any like edges in both
// directions; a block withdraws prior interest signals.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return apperrors.ErrSelfAction
	}
	if _, err := s.principals.GetByID(ctx, blockedID); err != nil {
		return err
	}

	block := &models.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return err
	}

	return s.likes.DeleteBetween(ctx, blockerID, blockedID)
}

// Unblock removes only the edge owned by the blocker; it never resurrects
// retracted likes and does not touch the other direction.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return apperrors.ErrSelfAction
	}
	return s.blocks.Delete(ctx, blockerID, blockedID)
}

// IsBlocked reports whether either directed edge exists
func (s *BlockService) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	return s.blocks.IsBlocked(ctx, a, b)
}

// ListBlocked returns the principals the caller has blocked
func (s *BlockService) ListBlocked(ctx context.Context, blockerID string) ([]models.Principal, error) {
	return s.blocks.ListBlockedBy(ctx, blockerID)
}
