package repository

import (
	"context"
	"time"

	"amora-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, read, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID,
		msg.Content, msg.Read, msg.ExpiresAt, msg.CreatedAt,
	)
	if err != nil {
		return storeErr("failed to create message", err)
	}
	return nil
}

// ListByConversation returns messages newest first, paged
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, content, read, expires_at, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, storeErr("failed to list messages", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
			&m.Content, &m.Read, &m.ExpiresAt, &m.CreatedAt,
		)
		if err != nil {
			return nil, storeErr("failed to scan message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate messages", err)
	}
	return messages, nil
}

// MarkRead flags every unread message addressed to the reader in the
// conversation
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	query := `
		UPDATE messages SET read = true
		WHERE conversation_id = $1 AND receiver_id = $2 AND read = false
	`
	_, err := r.db.Exec(ctx, query, conversationID, readerID)
	if err != nil {
		return storeErr("failed to mark messages read", err)
	}
	return nil
}

// ScheduleForPrincipal sets the expiration on every message touching the
// principal that has none yet. Messages already scheduled keep their
// earlier deadline.
func (r *MessageRepository) ScheduleForPrincipal(ctx context.Context, principalID string, expiresAt time.Time) (int64, error) {
	query := `
		UPDATE messages SET expires_at = $1
		WHERE (sender_id = $2 OR receiver_id = $2) AND expires_at IS NULL
	`
	result, err := r.db.Exec(ctx, query, expiresAt, principalID)
	if err != nil {
		return 0, storeErr("failed to schedule message expiration", err)
	}
	return result.RowsAffected(), nil
}

// ClearSchedulesForPrincipal drops any pending expiration on the
// principal's messages
func (r *MessageRepository) ClearSchedulesForPrincipal(ctx context.Context, principalID string) (int64, error) {
	query := `
		UPDATE messages SET expires_at = NULL
		WHERE (sender_id = $1 OR receiver_id = $1) AND expires_at IS NOT NULL
	`
	result, err := r.db.Exec(ctx, query, principalID)
	if err != nil {
		return 0, storeErr("failed to clear message expiration", err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired hard-deletes every message whose deadline has passed
func (r *MessageRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM messages WHERE expires_at IS NOT NULL AND expires_at <= $1`
	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, storeErr("failed to delete expired messages", err)
	}
	return result.RowsAffected(), nil
}
