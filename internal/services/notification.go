package services

import (
	"context"

	"amora-backend/internal/clock"
	"amora-backend/internal/metrics"
	"amora-backend/internal/models"

	"github.com/google/uuid"
)

// NotificationService emits and lists notifications. Notifications are an
// output artifact only; no other component reads them back.
type NotificationService struct {
	notifications NotificationStore
	clock         clock.Clock
	pageSize      int
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications NotificationStore, clk clock.Clock, pageSize int) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		clock:         clk,
		pageSize:      pageSize,
	}
}

// Notify records a notification for the owner
func (s *NotificationService) Notify(ctx context.Context, ownerID string, kind models.NotificationKind, actorID string) error {
	n := &models.Notification{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Kind:      kind,
		ActorID:   actorID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsEmitted.Inc()
	return nil
}

// ListFor returns a page of the owner's notifications
func (s *NotificationService) ListFor(ctx context.Context, ownerID string, page int) ([]models.Notification, error) {
	if page < 1 {
		page = 1
	}
	return s.notifications.ListFor(ctx, ownerID, s.pageSize, (page-1)*s.pageSize)
}

// MarkAllRead flags every unread notification for the owner
func (s *NotificationService) MarkAllRead(ctx context.Context, ownerID string) error {
	return s.notifications.MarkAllRead(ctx, ownerID)
}
