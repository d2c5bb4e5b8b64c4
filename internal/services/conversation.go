package services

import (
	"context"
	"unicode/utf8"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/clock"
	"amora-backend/internal/metrics"
	"amora-backend/internal/models"

	"github.com/google/uuid"
)

// ConversationService finds and creates the single conversation between
// two principals and owns message sending and read state.
type ConversationService struct {
	conversations ConversationStore
	messages      MessageStore
	blocks        BlockStore
	principals    PrincipalStore
	notifications *NotificationService
	clock         clock.Clock
	maxLength     int
	pageSize      int
}

// NewConversationService creates a new conversation service
func NewConversationService(
	conversations ConversationStore,
	messages MessageStore,
	blocks BlockStore,
	principals PrincipalStore,
	notifications *NotificationService,
	clk clock.Clock,
	maxLength, pageSize int,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		blocks:        blocks,
		principals:    principals,
		notifications: notifications,
		clock:         clk,
		maxLength:     maxLength,
		pageSize:      pageSize,
	}
}

// GetOrCreate finds the conversation for the pair or lazily creates it.
// The pair is normalized before insert so the unique constraint keeps a
// single conversation per pair; a concurrent duplicate insert from the
// other side loses the race and re-runs the lookup.
func (s *ConversationService) GetOrCreate(ctx context.Context, caller *models.Principal, otherID string) (*models.Conversation, error) {
	if caller.ID == otherID {
		return nil, apperrors.ErrSelfAction
	}
	if _, err := s.principals.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	blocked, err := s.blocks.IsBlocked(ctx, caller.ID, otherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrBlocked
	}

	userAID, userBID := caller.ID, otherID
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	conv, err := s.conversations.GetByPair(ctx, userAID, userBID)
	if err == nil {
		return conv, nil
	}
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	conv = &models.Conversation{
		ID:        uuid.New().String(),
		UserAID:   userAID,
		UserBID:   userBID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		// Lost the race against a concurrent first contact from the
		// other side; the existing row wins.
		if apperrors.Is(err, apperrors.CodeConflict) {
			return s.conversations.GetByPair(ctx, userAID, userBID)
		}
		return nil, err
	}
	return conv, nil
}

// ListFor returns the caller's non-archived conversations, blocked
// counterparts excluded at read time.
func (s *ConversationService) ListFor(ctx context.Context, callerID string) ([]models.ConversationSummary, error) {
	return s.conversations.ListFor(ctx, callerID)
}

// Archive hides the conversation from the caller's list only. Message
// rows and the other participant's copy are untouched.
func (s *ConversationService) Archive(ctx context.Context, callerID, conversationID string) error {
	if _, err := s.conversations.GetParticipant(ctx, conversationID, callerID); err != nil {
		return err
	}
	return s.conversations.SetArchived(ctx, conversationID, callerID, true)
}

// SendMessage appends a message to the conversation. A sender who is not
// a participant gets NotFound, never Forbidden, so conversation existence
// is not confirmed to outsiders.
func (s *ConversationService) SendMessage(ctx context.Context, sender *models.Principal, conversationID, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.maxLength {
		return nil, apperrors.ErrMessageTooLong
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Has(sender.ID) {
		return nil, apperrors.ErrConversationNotFound
	}

	receiverID := conv.Other(sender.ID)
	blocked, err := s.blocks.IsBlocked(ctx, sender.ID, receiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrBlocked
	}

	now := s.clock.Now()
	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       sender.ID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conversationID, now); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	if err := s.notifications.Notify(ctx, receiverID, models.NotificationMessage, sender.ID); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a page of messages, newest first, and acknowledges
// them: messages addressed to the caller are marked read and the caller's
// last-read timestamp is stamped. With a polling client, each poll is the
// read receipt.
func (s *ConversationService) ListMessages(ctx context.Context, caller *models.Principal, conversationID string, page int) ([]models.Message, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Has(caller.ID) {
		return nil, apperrors.ErrConversationNotFound
	}

	if page < 1 {
		page = 1
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkRead(ctx, conversationID, caller.ID); err != nil {
		return nil, err
	}
	if err := s.conversations.SetLastRead(ctx, conversationID, caller.ID, s.clock.Now()); err != nil {
		return nil, err
	}
	return msgs, nil
}
