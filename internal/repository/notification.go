package repository

import (
	"context"

	"amora-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, owner_id, kind, actor_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, n.ID, n.OwnerID, n.Kind, n.ActorID, n.Read, n.CreatedAt)
	if err != nil {
		return storeErr("failed to create notification", err)
	}
	return nil
}

// ListFor returns the owner's notifications newest first, paged
func (r *NotificationRepository) ListFor(ctx context.Context, ownerID string, limit, offset int) ([]models.Notification, error) {
	query := `
		SELECT id, owner_id, kind, actor_id, read, created_at
		FROM notifications
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, storeErr("failed to list notifications", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Kind, &n.ActorID, &n.Read, &n.CreatedAt); err != nil {
			return nil, storeErr("failed to scan notification", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate notifications", err)
	}
	return notifications, nil
}

// MarkAllRead flags every unread notification for the owner
func (r *NotificationRepository) MarkAllRead(ctx context.Context, ownerID string) error {
	query := `UPDATE notifications SET read = true WHERE owner_id = $1 AND read = false`
	_, err := r.db.Exec(ctx, query, ownerID)
	if err != nil {
		return storeErr("failed to mark notifications read", err)
	}
	return nil
}

// DeleteFor removes every notification owned by the principal
func (r *NotificationRepository) DeleteFor(ctx context.Context, ownerID string) error {
	query := `DELETE FROM notifications WHERE owner_id = $1`
	_, err := r.db.Exec(ctx, query, ownerID)
	if err != nil {
		return storeErr("failed to delete notifications", err)
	}
	return nil
}
