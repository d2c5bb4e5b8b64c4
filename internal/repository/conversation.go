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

// ConversationRepository handles database operations for conversations
// and their participant rows
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// ErrDuplicatePair signals a concurrent insert for the same pair; callers
// re-run the lookup.
var ErrDuplicatePair = apperrors.Conflict("conversation already exists for this pair")

// Create inserts a conversation and both participant rows in one
// transaction. The unique constraint on (user_a_id, user_b_id) rejects a
// concurrent duplicate.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, user_a_id, user_b_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conv.ID, conv.UserAID, conv.UserBID, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePair
		}
		return storeErr("failed to create conversation", err)
	}

	for _, pid := range []string{conv.UserAID, conv.UserBID} {
		_, err = tx.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, principal_id, archived)
			VALUES ($1, $2, false)
		`, conv.ID, pid)
		if err != nil {
			return storeErr("failed to create participant", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("failed to commit conversation", err)
	}
	return nil
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a conversation by id
func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `SELECT id, user_a_id, user_b_id, created_at, updated_at FROM conversations WHERE id = $1`
	c, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, storeErr("failed to get conversation", err)
	}
	return c, nil
}

// GetByPair retrieves the conversation for a normalized pair
func (r *ConversationRepository) GetByPair(ctx context.Context, userAID, userBID string) (*models.Conversation, error) {
	query := `
		SELECT id, user_a_id, user_b_id, created_at, updated_at
		FROM conversations
		WHERE user_a_id = $1 AND user_b_id = $2
	`
	c, err := scanConversation(r.db.QueryRow(ctx, query, userAID, userBID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, storeErr("failed to get conversation by pair", err)
	}
	return c, nil
}

// GetParticipant retrieves the participant row for a principal
func (r *ConversationRepository) GetParticipant(ctx context.Context, conversationID, principalID string) (*models.ConversationParticipant, error) {
	query := `
		SELECT conversation_id, principal_id, archived, last_read_at
		FROM conversation_participants
		WHERE conversation_id = $1 AND principal_id = $2
	`
	var cp models.ConversationParticipant
	err := r.db.QueryRow(ctx, query, conversationID, principalID).Scan(
		&cp.ConversationID, &cp.PrincipalID, &cp.Archived, &cp.LastReadAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, storeErr("failed to get participant", err)
	}
	return &cp, nil
}

// ListFor returns the principal's non-archived conversations joined to the
// counterpart and the most recent message, excluding counterparts blocked
// in either direction.
func (r *ConversationRepository) ListFor(ctx context.Context, principalID string) ([]models.ConversationSummary, error) {
	query := `
		SELECT c.id, c.user_a_id, c.user_b_id, c.created_at, c.updated_at,
		       ` + prefixedPrincipalColumns("o") + `,
		       m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.read, m.expires_at, m.created_at,
		       (SELECT COUNT(*) FROM messages um
		        WHERE um.conversation_id = c.id AND um.receiver_id = $1 AND um.read = false)
		FROM conversation_participants cp
		JOIN conversations c ON c.id = cp.conversation_id
		JOIN principals o ON o.id = CASE WHEN c.user_a_id = $1 THEN c.user_b_id ELSE c.user_a_id END
		LEFT JOIN LATERAL (
			SELECT * FROM messages lm
			WHERE lm.conversation_id = c.id
			ORDER BY lm.created_at DESC
			LIMIT 1
		) m ON true
		WHERE cp.principal_id = $1
		  AND cp.archived = false
		  AND NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = $1 AND b.blocked_id = o.id)
			   OR (b.blocker_id = o.id AND b.blocked_id = $1)
		  )
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, principalID)
	if err != nil {
		return nil, storeErr("failed to list conversations", err)
	}
	defer rows.Close()

	var out []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		var msgID, msgConvID, msgSender, msgReceiver, msgContent *string
		var msgRead *bool
		var msgExpires, msgCreated *time.Time
		err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.UserAID, &s.Conversation.UserBID,
			&s.Conversation.CreatedAt, &s.Conversation.UpdatedAt,
			&s.Other.ID, &s.Other.DisplayName, &s.Other.Kind, &s.Other.Email, &s.Other.PasswordHash,
			&s.Other.Banned, &s.Other.Verified, &s.Other.Online, &s.Other.LastSeenAt, &s.Other.CreatedAt,
			&msgID, &msgConvID, &msgSender, &msgReceiver, &msgContent, &msgRead, &msgExpires, &msgCreated,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, storeErr("failed to scan conversation summary", err)
		}
		if msgID != nil {
			s.LastMessage = &models.Message{
				ID:             *msgID,
				ConversationID: *msgConvID,
				SenderID:       *msgSender,
				ReceiverID:     *msgReceiver,
				Content:        *msgContent,
				Read:           *msgRead,
				ExpiresAt:      msgExpires,
				CreatedAt:      *msgCreated,
			}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate conversation summaries", err)
	}
	return out, nil
}

// SetArchived flips only the given participant's archived flag
func (r *ConversationRepository) SetArchived(ctx context.Context, conversationID, principalID string, archived bool) error {
	query := `
		UPDATE conversation_participants SET archived = $1
		WHERE conversation_id = $2 AND principal_id = $3
	`
	result, err := r.db.Exec(ctx, query, archived, conversationID, principalID)
	if err != nil {
		return storeErr("failed to archive conversation", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// SetLastRead stamps the participant's last-read timestamp
func (r *ConversationRepository) SetLastRead(ctx context.Context, conversationID, principalID string, at time.Time) error {
	query := `
		UPDATE conversation_participants SET last_read_at = $1
		WHERE conversation_id = $2 AND principal_id = $3
	`
	_, err := r.db.Exec(ctx, query, at, conversationID, principalID)
	if err != nil {
		return storeErr("failed to update last read", err)
	}
	return nil
}

// Touch bumps the conversation activity timestamp
func (r *ConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	query := `UPDATE conversations SET updated_at = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, at, conversationID)
	if err != nil {
		return storeErr("failed to touch conversation", err)
	}
	return nil
}

// PurgeForPrincipal runs the quick-access disconnect cascade in one
// transaction: messages in the principal's conversations are scheduled to
// expire immediately, then the participant and conversation rows are
// deleted. Message rows stay orphaned until the expiration sweep collects
// them.
func (r *ConversationRepository) PurgeForPrincipal(ctx context.Context, principalID string, now time.Time) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE messages SET expires_at = $1
		WHERE expires_at IS NULL
		  AND conversation_id IN (
			SELECT id FROM conversations WHERE user_a_id = $2 OR user_b_id = $2
		  )
	`, now, principalID)
	if err != nil {
		return 0, storeErr("failed to schedule messages for purge", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM conversation_participants
		WHERE conversation_id IN (
			SELECT id FROM conversations WHERE user_a_id = $1 OR user_b_id = $1
		)
	`, principalID)
	if err != nil {
		return 0, storeErr("failed to delete participants", err)
	}

	result, err := tx.Exec(ctx, `
		DELETE FROM conversations WHERE user_a_id = $1 OR user_b_id = $1
	`, principalID)
	if err != nil {
		return 0, storeErr("failed to delete conversations", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storeErr("failed to commit purge", err)
	}
	return result.RowsAffected(), nil
}

// prefixedPrincipalColumns qualifies the principal column list with a
// table alias for join queries.
func prefixedPrincipalColumns(alias string) string {
	return alias + `.id, ` + alias + `.display_name, ` + alias + `.kind, ` + alias + `.email, ` +
		alias + `.password_hash, ` + alias + `.banned, ` + alias + `.verified, ` + alias + `.online, ` +
		alias + `.last_seen_at, ` + alias + `.created_at`
}
