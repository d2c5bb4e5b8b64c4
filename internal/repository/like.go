package repository

import (
	"context"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for like edges
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a directed like edge
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `
		INSERT INTO likes (sender_id, receiver_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, like.SenderID, like.ReceiverID, like.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyLiked
		}
		return storeErr("failed to create like", err)
	}
	return nil
}

// Delete removes a directed like edge; removing a missing edge is a no-op
func (r *LikeRepository) Delete(ctx context.Context, senderID, receiverID string) error {
	query := `DELETE FROM likes WHERE sender_id = $1 AND receiver_id = $2`
	_, err := r.db.Exec(ctx, query, senderID, receiverID)
	if err != nil {
		return storeErr("failed to delete like", err)
	}
	return nil
}

// Exists reports whether the directed edge sender->receiver exists
func (r *LikeRepository) Exists(ctx context.Context, senderID, receiverID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE sender_id = $1 AND receiver_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, senderID, receiverID).Scan(&exists); err != nil {
		return false, storeErr("failed to check like existence", err)
	}
	return exists, nil
}

// DeleteBetween removes like edges in both directions between two principals
func (r *LikeRepository) DeleteBetween(ctx context.Context, a, b string) error {
	query := `
		DELETE FROM likes
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
	`
	_, err := r.db.Exec(ctx, query, a, b)
	if err != nil {
		return storeErr("failed to delete likes between principals", err)
	}
	return nil
}

// DeleteFor removes every like edge touching the principal
func (r *LikeRepository) DeleteFor(ctx context.Context, principalID string) error {
	query := `DELETE FROM likes WHERE sender_id = $1 OR receiver_id = $1`
	_, err := r.db.Exec(ctx, query, principalID)
	if err != nil {
		return storeErr("failed to delete likes for principal", err)
	}
	return nil
}
