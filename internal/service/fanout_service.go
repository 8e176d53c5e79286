package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/featureflags"
	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/observability"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
)

// RealtimePublisher pushes a freshly persisted notification to any live
// connection the recipient holds. Implementations must be non-blocking from
// the caller's perspective; delivery is best-effort.
type RealtimePublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// FanoutService delivers publish events to subscribers. It runs after the
// post row is committed and never fails the publish itself: a bad recipient
// is logged and counted, then the loop moves on.
type FanoutService struct {
	subRepo          repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	realtime         RealtimePublisher
	flags            *featureflags.Manager
}

// NewFanoutService wires the fan-out. flags may be nil; the realtime
// kill switch then stays off.
func NewFanoutService(
	subRepo repository.SubscriptionRepository,
	notificationRepo repository.NotificationRepository,
	realtime RealtimePublisher,
	flags *featureflags.Manager,
) *FanoutService {
	return &FanoutService{
		subRepo:          subRepo,
		notificationRepo: notificationRepo,
		realtime:         realtime,
		flags:            flags,
	}
}

// FanoutResult summarizes one fan-out run.
type FanoutResult struct {
	Delivered  int
	Duplicates int
	Failed     int
}

// OnPostPublished writes one NEW_POST notification per subscriber of the
// author. Each insert is independent: duplicates (a re-run for the same
// post) are skipped via the dedup key, and a failed insert never aborts the
// remaining recipients.
func (s *FanoutService) OnPostPublished(ctx context.Context, post *models.Post, author *models.User) (FanoutResult, error) {
	start := time.Now()
	fields := map[string]interface{}{
		"post_id":   post.ID,
		"author_id": author.ID,
	}
	observability.LogAsyncOperationStart(ctx, "post_fanout", fields)

	followers, err := s.subRepo.FollowerIDs(ctx, author.ID)
	if err != nil {
		observability.LogAsyncOperationError(ctx, "post_fanout", err, fields)
		return FanoutResult{}, err
	}

	message := fmt.Sprintf("%s published a new post: %s", author.Username, post.Title)
	postID := post.ID

	var result FanoutResult
	for _, followerID := range followers {
		n := &models.Notification{
			UserID:  followerID,
			ActorID: author.ID,
			PostID:  &postID,
			Kind:    models.NotificationNewPost,
			Message: message,
		}
		created, err := s.notificationRepo.CreateIgnoreDuplicate(ctx, n)
		if err != nil {
			result.Failed++
			observability.FanoutNotifications.WithLabelValues(observability.FanoutOutcomeFailed).Inc()
			observability.LogAsyncOperationError(ctx, "post_fanout", err, map[string]interface{}{
				"post_id":      post.ID,
				"recipient_id": followerID,
			})
			continue
		}
		if !created {
			result.Duplicates++
			observability.FanoutNotifications.WithLabelValues(observability.FanoutOutcomeDuplicate).Inc()
			continue
		}
		result.Delivered++
		observability.FanoutNotifications.WithLabelValues(observability.FanoutOutcomeDelivered).Inc()

		if s.realtime != nil && !s.flags.Enabled(featureflags.FlagDisableRealtime, followerID) {
			if err := s.realtime.PublishNotification(ctx, n); err != nil {
				observability.LogAsyncOperationError(ctx, "post_fanout_realtime", err, map[string]interface{}{
					"recipient_id": followerID,
				})
			}
		}
	}

	observability.FanoutDuration.Observe(time.Since(start).Seconds())
	fields["delivered"] = result.Delivered
	fields["duplicates"] = result.Duplicates
	fields["failed"] = result.Failed
	observability.LogAsyncOperationEnd(ctx, "post_fanout", fields)
	return result, nil
}
