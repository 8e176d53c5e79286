package repository

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/cache"
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	// CreateIgnoreDuplicate inserts the notification unless one already
	// exists for the same (recipient, post, kind); returns false for the
	// duplicate case.
	CreateIgnoreDuplicate(ctx context.Context, n *models.Notification) (bool, error)
	ListUnread(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	// MarkRead marks the notification read; scoped to the owning user.
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateIgnoreDuplicate(ctx context.Context, n *models.Notification) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(n)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUnreadCount(ctx, n.UserID)
		return true, nil
	}
	return false, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	var ns []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&ns).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ns, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadCountKey(userID), &count, cache.UnreadCountTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return nil
}
