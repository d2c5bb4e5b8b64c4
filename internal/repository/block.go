package repository

import (
	"context"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BlockRepository handles database operations for block edges
type BlockRepository struct {
	db *pgxpool.Pool
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create inserts a directed block edge
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, block.BlockerID, block.BlockedID, block.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyBlocked
		}
		return storeErr("failed to create block", err)
	}
	return nil
}

// Delete removes only the edge owned by the blocker; missing edge is a no-op
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`
	_, err := r.db.Exec(ctx, query, blockerID, blockedID)
	if err != nil {
		return storeErr("failed to delete block", err)
	}
	return nil
}

// IsBlocked reports whether a block edge exists in either direction
func (r *BlockRepository) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`
	var blocked bool
	if err := r.db.QueryRow(ctx, query, a, b).Scan(&blocked); err != nil {
		return false, storeErr("failed to check block", err)
	}
	return blocked, nil
}

// ListBlockedBy returns the principals the blocker has blocked
func (r *BlockRepository) ListBlockedBy(ctx context.Context, blockerID string) ([]models.Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals p
		JOIN blocks b ON b.blocked_id = p.id
		WHERE b.blocker_id = $1
		ORDER BY b.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, blockerID)
	if err != nil {
		return nil, storeErr("failed to list blocked principals", err)
	}
	defer rows.Close()

	var blocked []models.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, storeErr("failed to scan blocked principal", err)
		}
		blocked = append(blocked, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate blocked principals", err)
	}
	return blocked, nil
}

// DeleteFor removes every block edge touching the principal
func (r *BlockRepository) DeleteFor(ctx context.Context, principalID string) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 OR blocked_id = $1`
	_, err := r.db.Exec(ctx, query, principalID)
	if err != nil {
		return storeErr("failed to delete blocks for principal", err)
	}
	return nil
}
