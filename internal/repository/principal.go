package repository

import (
	"context"
	"errors"
	"time"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PrincipalRepository handles database operations for principals
type PrincipalRepository struct {
	db *pgxpool.Pool
}

// NewPrincipalRepository creates a new principal repository
func NewPrincipalRepository(db *pgxpool.Pool) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

const principalColumns = `id, display_name, kind, email, password_hash, banned, verified, online, last_seen_at, created_at`

func scanPrincipal(row pgx.Row) (*models.Principal, error) {
	var p models.Principal
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.Kind, &p.Email, &p.PasswordHash,
		&p.Banned, &p.Verified, &p.Online, &p.LastSeenAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new principal
func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	query := `
		INSERT INTO principals (id, display_name, kind, email, password_hash, banned, verified, online, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.DisplayName, p.Kind, p.Email, p.PasswordHash,
		p.Banned, p.Verified, p.Online, p.LastSeenAt, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrEmailTaken
		}
		return storeErr("failed to create principal", err)
	}
	return nil
}

// GetByID retrieves a principal by id
func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1`
	p, err := scanPrincipal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		return nil, storeErr("failed to get principal", err)
	}
	return p, nil
}

// GetByEmail retrieves a registered principal by email
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE email = $1`
	p, err := scanPrincipal(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPrincipalNotFound
		}
		return nil, storeErr("failed to get principal by email", err)
	}
	return p, nil
}

// SetPresence updates the online flag and last-seen timestamp
func (r *PrincipalRepository) SetPresence(ctx context.Context, id string, online bool, at time.Time) error {
	query := `UPDATE principals SET online = $1, last_seen_at = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, online, at, id)
	if err != nil {
		return storeErr("failed to update presence", err)
	}
	return nil
}

// MarkStaleOffline flips every principal that has been online past the
// cutoff to offline and returns them so disconnect hooks can run.
func (r *PrincipalRepository) MarkStaleOffline(ctx context.Context, cutoff, now time.Time) ([]models.Principal, error) {
	query := `
		UPDATE principals SET online = false, last_seen_at = $2
		WHERE online = true AND last_seen_at < $1
		RETURNING ` + principalColumns
	rows, err := r.db.Query(ctx, query, cutoff, now)
	if err != nil {
		return nil, storeErr("failed to sweep stale principals", err)
	}
	defer rows.Close()

	var stale []models.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, storeErr("failed to scan stale principal", err)
		}
		stale = append(stale, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate stale principals", err)
	}
	return stale, nil
}

// ListOnline returns online principals visible to the viewer, excluding
// the viewer, banned accounts and anyone blocked in either direction.
func (r *PrincipalRepository) ListOnline(ctx context.Context, viewerID string, limit, offset int) ([]models.Principal, error) {
	query := `
		SELECT ` + principalColumns + `
		FROM principals p
		WHERE p.online = true
		  AND p.banned = false
		  AND p.id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = $1 AND b.blocked_id = p.id)
			   OR (b.blocker_id = p.id AND b.blocked_id = $1)
		  )
		ORDER BY p.last_seen_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, storeErr("failed to list online principals", err)
	}
	defer rows.Close()

	var online []models.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, storeErr("failed to scan online principal", err)
		}
		online = append(online, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate online principals", err)
	}
	return online, nil
}

// Delete removes a principal row
func (r *PrincipalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return storeErr("failed to delete principal", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrPrincipalNotFound
	}
	return nil
}
