package service

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
)

// NotificationService exposes the recipient-facing notification inbox.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListUnread returns the viewer's unread notifications, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Notification, error) {
	if viewer == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return s.notificationRepo.ListUnread(ctx, viewer.ID, limit, offset)
}

// CountUnread returns the viewer's unread badge count.
func (s *NotificationService) CountUnread(ctx context.Context, viewer *models.User) (int64, error) {
	if viewer == nil {
		return 0, models.NewUnauthenticatedError("Authentication required")
	}
	return s.notificationRepo.CountUnread(ctx, viewer.ID)
}

// MarkRead marks one of the viewer's notifications as read. Another user's
// notification is indistinguishable from a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, viewer *models.User, id uint) error {
	if viewer == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	return s.notificationRepo.MarkRead(ctx, id, viewer.ID)
}

// MarkAllRead clears the viewer's entire unread set.
func (s *NotificationService) MarkAllRead(ctx context.Context, viewer *models.User) error {
	if viewer == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	return s.notificationRepo.MarkAllRead(ctx, viewer.ID)
}
