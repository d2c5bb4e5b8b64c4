package services

import (
	"context"
	"time"

	"amora-backend/internal/models"

	"github.com/google/uuid"
)

// Adapters exposing the shared fakeStore through each store interface.
// fakeStore itself satisfies PrincipalStore.

type fakeLikes struct{ s *fakeStore }

func (f fakeLikes) Create(ctx context.Context, like *models.Like) error {
	return f.s.CreateLike(ctx, like)
}
func (f fakeLikes) Delete(ctx context.Context, senderID, receiverID string) error {
	return f.s.DeleteLike(ctx, senderID, receiverID)
}
func (f fakeLikes) Exists(ctx context.Context, senderID, receiverID string) (bool, error) {
	return f.s.LikeExists(ctx, senderID, receiverID)
}
func (f fakeLikes) DeleteBetween(ctx context.Context, a, b string) error {
	return f.s.DeleteLikesBetween(ctx, a, b)
}
func (f fakeLikes) DeleteFor(ctx context.Context, principalID string) error {
	return f.s.DeleteLikesFor(ctx, principalID)
}

type fakeBlocks struct{ s *fakeStore }

func (f fakeBlocks) Create(ctx context.Context, block *models.Block) error {
	return f.s.CreateBlock(ctx, block)
}
func (f fakeBlocks) Delete(ctx context.Context, blockerID, blockedID string) error {
	return f.s.DeleteBlock(ctx, blockerID, blockedID)
}
func (f fakeBlocks) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	return f.s.IsBlocked(ctx, a, b)
}
func (f fakeBlocks) ListBlockedBy(ctx context.Context, blockerID string) ([]models.Principal, error) {
	return f.s.ListBlockedBy(ctx, blockerID)
}
func (f fakeBlocks) DeleteFor(ctx context.Context, principalID string) error {
	return f.s.DeleteBlocksFor(ctx, principalID)
}

type fakeConvs struct{ s *fakeStore }

func (f fakeConvs) Create(ctx context.Context, conv *models.Conversation) error {
	return f.s.CreateConversation(ctx, conv)
}
func (f fakeConvs) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	return f.s.GetConversation(ctx, id)
}
func (f fakeConvs) GetByPair(ctx context.Context, userAID, userBID string) (*models.Conversation, error) {
	return f.s.GetConversationByPair(ctx, userAID, userBID)
}
func (f fakeConvs) GetParticipant(ctx context.Context, conversationID, principalID string) (*models.ConversationParticipant, error) {
	return f.s.GetParticipant(ctx, conversationID, principalID)
}
func (f fakeConvs) ListFor(ctx context.Context, principalID string) ([]models.ConversationSummary, error) {
	return f.s.ListConversationsFor(ctx, principalID)
}
func (f fakeConvs) SetArchived(ctx context.Context, conversationID, principalID string, archived bool) error {
	return f.s.SetArchived(ctx, conversationID, principalID, archived)
}
func (f fakeConvs) SetLastRead(ctx context.Context, conversationID, principalID string, at time.Time) error {
	return f.s.SetLastRead(ctx, conversationID, principalID, at)
}
func (f fakeConvs) Touch(ctx context.Context, conversationID string, at time.Time) error {
	return f.s.TouchConversation(ctx, conversationID, at)
}
func (f fakeConvs) PurgeForPrincipal(ctx context.Context, principalID string, now time.Time) (int64, error) {
	return f.s.PurgeForPrincipal(ctx, principalID, now)
}

type fakeMessages struct{ s *fakeStore }

func (f fakeMessages) Create(ctx context.Context, msg *models.Message) error {
	return f.s.CreateMessage(ctx, msg)
}
func (f fakeMessages) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	return f.s.ListMessagesByConversation(ctx, conversationID, limit, offset)
}
func (f fakeMessages) MarkRead(ctx context.Context, conversationID, readerID string) error {
	return f.s.MarkMessagesRead(ctx, conversationID, readerID)
}
func (f fakeMessages) ScheduleForPrincipal(ctx context.Context, principalID string, expiresAt time.Time) (int64, error) {
	return f.s.ScheduleForPrincipal(ctx, principalID, expiresAt)
}
func (f fakeMessages) ClearSchedulesForPrincipal(ctx context.Context, principalID string) (int64, error) {
	return f.s.ClearSchedulesForPrincipal(ctx, principalID)
}
func (f fakeMessages) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.s.DeleteExpired(ctx, now)
}

type fakeNotifs struct{ s *fakeStore }

func (f fakeNotifs) Create(ctx context.Context, n *models.Notification) error {
	return f.s.CreateNotification(ctx, n)
}
func (f fakeNotifs) ListFor(ctx context.Context, ownerID string, limit, offset int) ([]models.Notification, error) {
	return f.s.ListNotificationsFor(ctx, ownerID, limit, offset)
}
func (f fakeNotifs) MarkAllRead(ctx context.Context, ownerID string) error {
	return f.s.MarkAllNotificationsRead(ctx, ownerID)
}
func (f fakeNotifs) DeleteFor(ctx context.Context, ownerID string) error {
	return f.s.DeleteNotificationsFor(ctx, ownerID)
}

type fakeTokens struct{ s *fakeStore }

func (f fakeTokens) Save(ctx context.Context, token, principalID string, ttl time.Duration) error {
	return f.s.SaveToken(ctx, token, principalID, ttl)
}
func (f fakeTokens) Resolve(ctx context.Context, token string) (string, error) {
	return f.s.ResolveToken(ctx, token)
}
func (f fakeTokens) DeleteForPrincipal(ctx context.Context, principalID string) error {
	return f.s.DeleteTokenForPrincipal(ctx, principalID)
}

const (
	testStaleThreshold = 5 * time.Minute
	testGracePeriod    = 15 * time.Minute
	testPageSize       = 20
	testMaxLength      = 2000
)

// testEnv wires the full service graph over one fake store
type testEnv struct {
	store     *fakeStore
	clk       *fakeClock
	identity  *IdentityService
	presence  *PresenceService
	lifecycle *LifecycleService
	blocks    *BlockService
	likes     *LikeService
	convs     *ConversationService
	notifs    *NotificationService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	clk := newFakeClock()

	notifs := NewNotificationService(fakeNotifs{store}, clk, testPageSize)
	lifecycle := NewLifecycleService(fakeMessages{store}, fakeConvs{store}, clk, testGracePeriod)
	presence := NewPresenceService(store, clk, testStaleThreshold, testPageSize)
	presence.SetLifecycle(lifecycle)
	identity := NewIdentityService(
		store, fakeTokens{store}, presence,
		fakeLikes{store}, fakeBlocks{store}, fakeNotifs{store}, fakeConvs{store},
		clk, "test-secret", 24*time.Hour,
	)
	blocks := NewBlockService(fakeBlocks{store}, fakeLikes{store}, store, clk)
	likes := NewLikeService(fakeLikes{store}, fakeBlocks{store}, store, notifs, clk)
	convs := NewConversationService(
		fakeConvs{store}, fakeMessages{store}, fakeBlocks{store}, store, notifs,
		clk, testMaxLength, testPageSize,
	)

	return &testEnv{
		store:     store,
		clk:       clk,
		identity:  identity,
		presence:  presence,
		lifecycle: lifecycle,
		blocks:    blocks,
		likes:     likes,
		convs:     convs,
		notifs:    notifs,
	}
}

func (e *testEnv) addRegistered(name string) *models.Principal {
	email := name + "@example.com"
	p := &models.Principal{
		ID:          uuid.New().String(),
		DisplayName: name,
		Kind:        models.KindRegistered,
		Email:       &email,
		Online:      true,
		LastSeenAt:  e.clk.Now(),
		CreatedAt:   e.clk.Now(),
	}
	e.store.principals[p.ID] = *p
	return p
}

func (e *testEnv) addQuick(name string) *models.Principal {
	p := &models.Principal{
		ID:          uuid.New().String(),
		DisplayName: name,
		Kind:        models.KindQuickAccess,
		Online:      true,
		LastSeenAt:  e.clk.Now(),
		CreatedAt:   e.clk.Now(),
	}
	e.store.principals[p.ID] = *p
	return p
}
