package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"amora-backend/internal/apperrors"
	"amora-backend/internal/models"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeStore is an in-memory stand-in for the pgx and redis repositories.
// One struct backs every store interface, mirroring the single shared
// relational store.
type fakeStore struct {
	mu            sync.Mutex
	principals    map[string]models.Principal
	likes         map[[2]string]models.Like
	blocks        map[[2]string]models.Block
	convs         map[string]models.Conversation
	participants  map[[2]string]models.ConversationParticipant
	messages      map[string]models.Message
	notifications []models.Notification
	tokens        map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		principals:   make(map[string]models.Principal),
		likes:        make(map[[2]string]models.Like),
		blocks:       make(map[[2]string]models.Block),
		convs:        make(map[string]models.Conversation),
		participants: make(map[[2]string]models.ConversationParticipant),
		messages:     make(map[string]models.Message),
		tokens:       make(map[string]string),
	}
}

// --- PrincipalStore ---

func (s *fakeStore) Create(ctx context.Context, p *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Email != nil {
		for _, existing := range s.principals {
			if existing.Email != nil && *existing.Email == *p.Email {
				return apperrors.ErrEmailTaken
			}
		}
	}
	s.principals[p.ID] = *p
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return nil, apperrors.ErrPrincipalNotFound
	}
	return &p, nil
}

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.principals {
		if p.Email != nil && *p.Email == email {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrPrincipalNotFound
}

func (s *fakeStore) SetPresence(ctx context.Context, id string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[id]
	if !ok {
		return nil
	}
	p.Online = online
	p.LastSeenAt = at
	s.principals[id] = p
	return nil
}

func (s *fakeStore) MarkStaleOffline(ctx context.Context, cutoff, now time.Time) ([]models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []models.Principal
	for id, p := range s.principals {
		if p.Online && p.LastSeenAt.Before(cutoff) {
			p.Online = false
			p.LastSeenAt = now
			s.principals[id] = p
			stale = append(stale, p)
		}
	}
	return stale, nil
}

func (s *fakeStore) ListOnline(ctx context.Context, viewerID string, limit, offset int) ([]models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var online []models.Principal
	for _, p := range s.principals {
		if !p.Online || p.Banned || p.ID == viewerID {
			continue
		}
		if s.blockedLocked(viewerID, p.ID) {
			continue
		}
		online = append(online, p)
	}
	sort.Slice(online, func(i, j int) bool {
		return online[i].LastSeenAt.After(online[j].LastSeenAt)
	})
	return pageSlice(online, limit, offset), nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[id]; !ok {
		return apperrors.ErrPrincipalNotFound
	}
	delete(s.principals, id)
	return nil
}

// --- LikeStore ---

func (s *fakeStore) CreateLike(ctx context.Context, like *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{like.SenderID, like.ReceiverID}
	if _, exists := s.likes[key]; exists {
		return apperrors.ErrAlreadyLiked
	}
	s.likes[key] = *like
	return nil
}

func (s *fakeStore) DeleteLike(ctx context.Context, senderID, receiverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, [2]string{senderID, receiverID})
	return nil
}

func (s *fakeStore) LikeExists(ctx context.Context, senderID, receiverID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.likes[[2]string{senderID, receiverID}]
	return exists, nil
}

func (s *fakeStore) DeleteLikesBetween(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, [2]string{a, b})
	delete(s.likes, [2]string{b, a})
	return nil
}

func (s *fakeStore) DeleteLikesFor(ctx context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.likes {
		if key[0] == principalID || key[1] == principalID {
			delete(s.likes, key)
		}
	}
	return nil
}

// --- BlockStore ---

func (s *fakeStore) CreateBlock(ctx context.Context, block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{block.BlockerID, block.BlockedID}
	if _, exists := s.blocks[key]; exists {
		return apperrors.ErrAlreadyBlocked
	}
	s.blocks[key] = *block
	return nil
}

func (s *fakeStore) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocks, [2]string{blockerID, blockedID})
	return nil
}

func (s *fakeStore) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedLocked(a, b), nil
}

func (s *fakeStore) blockedLocked(a, b string) bool {
	_, forward := s.blocks[[2]string{a, b}]
	_, reverse := s.blocks[[2]string{b, a}]
	return forward || reverse
}

func (s *fakeStore) ListBlockedBy(ctx context.Context, blockerID string) ([]models.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var blocked []models.Principal
	for key := range s.blocks {
		if key[0] != blockerID {
			continue
		}
		if p, ok := s.principals[key[1]]; ok {
			blocked = append(blocked, p)
		}
	}
	return blocked, nil
}

func (s *fakeStore) DeleteBlocksFor(ctx context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.blocks {
		if key[0] == principalID || key[1] == principalID {
			delete(s.blocks, key)
		}
	}
	return nil
}

// --- ConversationStore ---

func (s *fakeStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.convs {
		if existing.UserAID == conv.UserAID && existing.UserBID == conv.UserBID {
			return apperrors.Conflict("conversation already exists for this pair")
		}
	}
	s.convs[conv.ID] = *conv
	for _, pid := range []string{conv.UserAID, conv.UserBID} {
		s.participants[[2]string{conv.ID, pid}] = models.ConversationParticipant{
			ConversationID: conv.ID,
			PrincipalID:    pid,
		}
	}
	return nil
}

func (s *fakeStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	return &conv, nil
}

func (s *fakeStore) GetConversationByPair(ctx context.Context, userAID, userBID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conv := range s.convs {
		if conv.UserAID == userAID && conv.UserBID == userBID {
			cp := conv
			return &cp, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (s *fakeStore) GetParticipant(ctx context.Context, conversationID, principalID string) (*models.ConversationParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.participants[[2]string{conversationID, principalID}]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	return &cp, nil
}

func (s *fakeStore) ListConversationsFor(ctx context.Context, principalID string) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConversationSummary
	for key, cp := range s.participants {
		if cp.PrincipalID != principalID || cp.Archived {
			continue
		}
		conv, ok := s.convs[key[0]]
		if !ok {
			continue
		}
		otherID := conv.Other(principalID)
		if s.blockedLocked(principalID, otherID) {
			continue
		}
		other, ok := s.principals[otherID]
		if !ok {
			continue
		}
		summary := models.ConversationSummary{Conversation: conv, Other: other}
		for _, m := range s.messages {
			if m.ConversationID != conv.ID {
				continue
			}
			if summary.LastMessage == nil || m.CreatedAt.After(summary.LastMessage.CreatedAt) {
				mc := m
				summary.LastMessage = &mc
			}
			if m.ReceiverID == principalID && !m.Read {
				summary.UnreadCount++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Conversation.UpdatedAt.After(out[j].Conversation.UpdatedAt)
	})
	return out, nil
}

func (s *fakeStore) SetArchived(ctx context.Context, conversationID, principalID string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{conversationID, principalID}
	cp, ok := s.participants[key]
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	cp.Archived = archived
	s.participants[key] = cp
	return nil
}

func (s *fakeStore) SetLastRead(ctx context.Context, conversationID, principalID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{conversationID, principalID}
	cp, ok := s.participants[key]
	if !ok {
		return nil
	}
	cp.LastReadAt = &at
	s.participants[key] = cp
	return nil
}

func (s *fakeStore) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[conversationID]
	if !ok {
		return nil
	}
	conv.UpdatedAt = at
	s.convs[conversationID] = conv
	return nil
}

func (s *fakeStore) PurgeForPrincipal(ctx context.Context, principalID string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, conv := range s.convs {
		if !conv.Has(principalID) {
			continue
		}
		for mid, m := range s.messages {
			if m.ConversationID == id && m.ExpiresAt == nil {
				expires := now
				m.ExpiresAt = &expires
				s.messages[mid] = m
			}
		}
		delete(s.participants, [2]string{id, conv.UserAID})
		delete(s.participants, [2]string{id, conv.UserBID})
		delete(s.convs, id)
		purged++
	}
	return purged, nil
}

// --- MessageStore ---

func (s *fakeStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ID] = *msg
	return nil
}

func (s *fakeStore) ListMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return pageSlice(msgs, limit, offset), nil
}

func (s *fakeStore) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.messages {
		if m.ConversationID == conversationID && m.ReceiverID == readerID && !m.Read {
			m.Read = true
			s.messages[id] = m
		}
	}
	return nil
}

func (s *fakeStore) ScheduleForPrincipal(ctx context.Context, principalID string, expiresAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scheduled int64
	for id, m := range s.messages {
		if (m.SenderID == principalID || m.ReceiverID == principalID) && m.ExpiresAt == nil {
			expires := expiresAt
			m.ExpiresAt = &expires
			s.messages[id] = m
			scheduled++
		}
	}
	return scheduled, nil
}

func (s *fakeStore) ClearSchedulesForPrincipal(ctx context.Context, principalID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cleared int64
	for id, m := range s.messages {
		if (m.SenderID == principalID || m.ReceiverID == principalID) && m.ExpiresAt != nil {
			m.ExpiresAt = nil
			s.messages[id] = m
			cleared++
		}
	}
	return cleared, nil
}

func (s *fakeStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, m := range s.messages {
		if m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
			delete(s.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- NotificationStore ---

func (s *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeStore) ListNotificationsFor(ctx context.Context, ownerID string, limit, offset int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return pageSlice(out, limit, offset), nil
}

func (s *fakeStore) MarkAllNotificationsRead(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].OwnerID == ownerID {
			s.notifications[i].Read = true
		}
	}
	return nil
}

func (s *fakeStore) DeleteNotificationsFor(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.OwnerID != ownerID {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	return nil
}

// --- TokenStore ---

func (s *fakeStore) SaveToken(ctx context.Context, token, principalID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = principalID
	return nil
}

func (s *fakeStore) ResolveToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	principalID, ok := s.tokens[token]
	if !ok {
		return "", apperrors.ErrInvalidToken
	}
	return principalID, nil
}

func (s *fakeStore) DeleteTokenForPrincipal(ctx context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, pid := range s.tokens {
		if pid == principalID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func pageSlice[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
