package notifications

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

// NotificationSink is the downstream delivery a PresencePublisher gates.
// *Notifier satisfies it.
type NotificationSink interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// PresencePublisher skips the publish for recipients with no live
// connection on any instance. The stored notification row is the durable
// copy; realtime delivery is only worth the Redis round trip when someone
// is there to receive it.
type PresencePublisher struct {
	hub  *Hub
	next NotificationSink
}

func NewPresencePublisher(hub *Hub, next NotificationSink) *PresencePublisher {
	return &PresencePublisher{hub: hub, next: next}
}

func (p *PresencePublisher) PublishNotification(ctx context.Context, n *models.Notification) error {
	if p.next == nil {
		return nil
	}
	if p.hub != nil && !p.hub.IsOnline(n.UserID) {
		return nil
	}
	return p.next.PublishNotification(ctx, n)
}
