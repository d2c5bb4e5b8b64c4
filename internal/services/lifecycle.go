package services

import (
	"context"
	"time"

	"amora-backend/internal/clock"
	"amora-backend/internal/metrics"
	"amora-backend/internal/models"
)

// LifecycleService implements the message expiration state machine.
//
// A message is Active while neither participant has disconnected since it
// was sent, Scheduled once a disconnect stamps an expiration deadline, and
// gone once the sweep passes that deadline. The deadline depends on the
// account kind of the participant who disconnected: registered accounts
// get a grace window, quick-access accounts expire immediately and lose
// their conversations outright.
type LifecycleService struct {
	messages      MessageStore
	conversations ConversationStore
	clock         clock.Clock
	gracePeriod   time.Duration
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(messages MessageStore, conversations ConversationStore, clk clock.Clock, gracePeriod time.Duration) *LifecycleService {
	return &LifecycleService{
		messages:      messages,
		conversations: conversations,
		clock:         clk,
		gracePeriod:   gracePeriod,
	}
}

// HandleDisconnect schedules expiration for every message touching the
// principal that has no deadline yet. Already-scheduled messages keep the
// deadline from the first disconnect after they were sent.
//
// For quick-access principals the cascade also deletes every conversation
// they participate in; anonymous sessions are not expected to return.
func (s *LifecycleService) HandleDisconnect(ctx context.Context, p *models.Principal) error {
	now := s.clock.Now()

	if p.IsQuickAccess() {
		purged, err := s.conversations.PurgeForPrincipal(ctx, p.ID, now)
		if err != nil {
			return err
		}
		metrics.ConversationsPurged.Add(float64(purged))
		return nil
	}

	_, err := s.messages.ScheduleForPrincipal(ctx, p.ID, now.Add(s.gracePeriod))
	return err
}

// HandleReconnect clears pending expirations for a registered principal.
// Quick-access sessions have no reconnection path; their schedules stand.
func (s *LifecycleService) HandleReconnect(ctx context.Context, p *models.Principal) error {
	if p.IsQuickAccess() {
		return nil
	}
	_, err := s.messages.ClearSchedulesForPrincipal(ctx, p.ID)
	return err
}

// SweepExpired hard-deletes every message whose deadline has passed.
// Safe to run concurrently with live traffic and with the staleness sweep.
func (s *LifecycleService) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.messages.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	metrics.MessagesExpired.Add(float64(deleted))
	return deleted, nil
}
