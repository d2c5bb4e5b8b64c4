package services

import (
	"context"
	"time"

	"amora-backend/internal/clock"
	"amora-backend/internal/metrics"
	"amora-backend/internal/models"
)

// LifecycleHooks is the presence tracker's view of the message lifecycle:
// disconnects schedule expiration, reconnects clear it.
type LifecycleHooks interface {
	HandleDisconnect(ctx context.Context, p *models.Principal) error
	HandleReconnect(ctx context.Context, p *models.Principal) error
}

// PresenceService tracks online state. Presence is optimistic: a principal
// is online from their last heartbeat until explicit logout or the next
// staleness sweep, never flipped instantaneously on timeout.
type PresenceService struct {
	principals     PrincipalStore
	clock          clock.Clock
	staleThreshold time.Duration
	pageSize       int
	lifecycle      LifecycleHooks
}

// NewPresenceService creates a new presence service
func NewPresenceService(principals PrincipalStore, clk clock.Clock, staleThreshold time.Duration, pageSize int) *PresenceService {
	return &PresenceService{
		principals:     principals,
		clock:          clk,
		staleThreshold: staleThreshold,
		pageSize:       pageSize,
	}
}

// SetLifecycle wires the lifecycle hooks after construction; presence and
// lifecycle reference each other only through this narrow interface.
func (s *PresenceService) SetLifecycle(hooks LifecycleHooks) {
	s.lifecycle = hooks
}

// Touch marks the principal online and refreshes last-seen. Every
// authenticated request lands here; for registered principals it doubles
// as the reconnect that un-schedules pending message expirations.
func (s *PresenceService) Touch(ctx context.Context, p *models.Principal) error {
	now := s.clock.Now()
	if err := s.principals.SetPresence(ctx, p.ID, true, now); err != nil {
		return err
	}
	p.Online = true
	p.LastSeenAt = now

	if s.lifecycle != nil {
		return s.lifecycle.HandleReconnect(ctx, p)
	}
	return nil
}

// MarkOffline records an explicit disconnect (logout) and runs the
// lifecycle disconnect hook.
func (s *PresenceService) MarkOffline(ctx context.Context, p *models.Principal) error {
	now := s.clock.Now()
	if err := s.principals.SetPresence(ctx, p.ID, false, now); err != nil {
		return err
	}
	p.Online = false
	p.LastSeenAt = now

	if s.lifecycle != nil {
		return s.lifecycle.HandleDisconnect(ctx, p)
	}
	return nil
}

// SweepStale flips every principal whose last heartbeat is older than the
// threshold to offline and runs the disconnect hook for each. This is the
// batch correction pass behind the polling design.
func (s *PresenceService) SweepStale(ctx context.Context) (int, error) {
	now := s.clock.Now()
	stale, err := s.principals.MarkStaleOffline(ctx, now.Add(-s.staleThreshold), now)
	if err != nil {
		return 0, err
	}

	for i := range stale {
		if s.lifecycle == nil {
			continue
		}
		if err := s.lifecycle.HandleDisconnect(ctx, &stale[i]); err != nil {
			return 0, err
		}
	}

	metrics.PrincipalsMarkedStale.Add(float64(len(stale)))
	return len(stale), nil
}

// IsOnline returns the stored flag directly; staleness can lag by up to
// one sweep interval.
func (s *PresenceService) IsOnline(ctx context.Context, principalID string) (bool, error) {
	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return false, err
	}
	return p.Online, nil
}

// ListOnline returns a page of online principals visible to the viewer
func (s *PresenceService) ListOnline(ctx context.Context, viewerID string, page int) ([]models.Principal, error) {
	if page < 1 {
		page = 1
	}
	return s.principals.ListOnline(ctx, viewerID, s.pageSize, (page-1)*s.pageSize)
}
