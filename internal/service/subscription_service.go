package service

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
)

// SubscriptionService manages the directed follow graph.
type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo}
}

func (s *SubscriptionService) resolveTarget(ctx context.Context, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return target, nil
}

// Subscribe creates a follow edge to the named user. Self-follows and
// duplicates are rejected.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriber *models.User, username string) error {
	if subscriber == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == subscriber.ID {
		return models.NewValidationError("You cannot subscribe to yourself")
	}
	return s.subRepo.Create(ctx, &models.Subscription{
		SubscriberID:   subscriber.ID,
		SubscribedToID: target.ID,
	})
}

// Unsubscribe removes the follow edge to the named user.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriber *models.User, username string) error {
	if subscriber == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return err
	}
	return s.subRepo.Delete(ctx, subscriber.ID, target.ID)
}

// IsSubscribed reports whether the viewer follows the named user.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, viewer *models.User, username string) (bool, error) {
	if viewer == nil {
		return false, models.NewUnauthenticatedError("Authentication required")
	}
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return false, err
	}
	return s.subRepo.Exists(ctx, viewer.ID, target.ID)
}

// Subscribers lists the accounts following the named user.
func (s *SubscriptionService) Subscribers(ctx context.Context, username string) ([]models.User, error) {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.subRepo.ListFollowers(ctx, target.ID)
}

// Subscriptions lists the accounts the named user follows.
func (s *SubscriptionService) Subscriptions(ctx context.Context, username string) ([]models.User, error) {
	target, err := s.resolveTarget(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.subRepo.ListFollowing(ctx, target.ID)
}
