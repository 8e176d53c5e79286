package repository

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, subscriberID, subscribedToID uint) error
	Exists(ctx context.Context, subscriberID, subscribedToID uint) (bool, error)
	// FollowingIDs returns the IDs of users the given user subscribes to.
	FollowingIDs(ctx context.Context, subscriberID uint) ([]uint, error)
	// FollowerIDs returns the IDs of users subscribed to the given user.
	FollowerIDs(ctx context.Context, subscribedToID uint) ([]uint, error)
	CountFollowers(ctx context.Context, subscribedToID uint) (int64, error)
	ListFollowers(ctx context.Context, subscribedToID uint) ([]models.User, error)
	ListFollowing(ctx context.Context, subscriberID uint) ([]models.User, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already subscribed")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, subscribedToID uint) error {
	res := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Subscription", subscribedToID)
	}
	return nil
}

func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, subscribedToID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *subscriptionRepository) FollowingIDs(ctx context.Context, subscriberID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Pluck("subscribed_to_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *subscriptionRepository) FollowerIDs(ctx context.Context, subscribedToID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscribed_to_id = ?", subscribedToID).
		Pluck("subscriber_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *subscriptionRepository) CountFollowers(ctx context.Context, subscribedToID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscribed_to_id = ?", subscribedToID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *subscriptionRepository) ListFollowers(ctx context.Context, subscribedToID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.subscriber_id = users.id").
		Where("subscriptions.subscribed_to_id = ?", subscribedToID).
		Order("subscriptions.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *subscriptionRepository) ListFollowing(ctx context.Context, subscriberID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.subscribed_to_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
