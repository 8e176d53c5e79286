package service

import (
	"context"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/observability"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
)

// FeedService composes the personalized home timeline.
type FeedService struct {
	postRepo repository.PostRepository
	subRepo  repository.SubscriptionRepository
}

func NewFeedService(postRepo repository.PostRepository, subRepo repository.SubscriptionRepository) *FeedService {
	return &FeedService{postRepo: postRepo, subRepo: subRepo}
}

// ComposeFeed returns the viewer's timeline: posts from followed authors,
// or the global listing when the viewer follows nobody. Reverse
// chronological, id as tiebreak.
func (s *FeedService) ComposeFeed(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Post, error) {
	if viewer == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	start := time.Now()
	defer func() {
		observability.FeedComposeLatency.Observe(time.Since(start).Seconds())
	}()

	following, err := s.subRepo.FollowingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	// Hidden filtering happens in the repository query so every page is
	// cut from the visible set; a run of hidden posts must not shrink or
	// empty a page that has older visible entries.
	includeHidden := viewer.IsAdmin()

	var posts []*models.Post
	if len(following) == 0 {
		posts, err = s.postRepo.List(ctx, limit, offset, viewer.ID, includeHidden)
	} else {
		posts, err = s.postRepo.ListByAuthors(ctx, following, limit, offset, viewer.ID, includeHidden)
	}
	if err != nil {
		return nil, err
	}

	return filterVisible(viewer, posts), nil
}
