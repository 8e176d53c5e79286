package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:42", UserChannel(42))
}

func TestNotifier_NilClientIsNoOp(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, n.PublishUser(ctx, 1, "payload"))
	assert.NoError(t, n.PublishBroadcast(ctx, "payload"))
	assert.NoError(t, n.StartPatternSubscriber(ctx, nil))
}

func TestNotifier_PublishNotificationRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	n := NewNotifier(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == UserChannel(7) {
			received <- payload
		}
	}))

	// PSubscribe is asynchronous; give the subscriber a moment to attach.
	time.Sleep(50 * time.Millisecond)

	postID := uint(3)
	notification := &models.Notification{
		ID:      1,
		UserID:  7,
		ActorID: 2,
		PostID:  &postID,
		Kind:    models.NotificationNewPost,
		Message: "alice published a new post: hello",
	}
	require.NoError(t, n.PublishNotification(ctx, notification))

	select {
	case payload := <-received:
		var got models.Notification
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, notification.Message, got.Message)
		assert.Equal(t, notification.UserID, got.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never reached the subscriber")
	}
}

func TestNotifier_BroadcastReachesPatternSubscriber(t *testing.T) {
	client := newTestRedis(t)
	n := NewNotifier(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			received <- payload
		}
	}))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, n.PublishBroadcast(ctx, "maintenance in 5 minutes"))

	select {
	case payload := <-received:
		assert.Equal(t, "maintenance in 5 minutes", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never reached the subscriber")
	}
}
