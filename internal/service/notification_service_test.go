package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.notifications)
	fanout := NewFanoutService(f.subs, f.notifications, nil, nil)
	ctx := context.Background()

	author := newTestUser(t, f.db, "author", models.RoleUser)
	reader := newTestUser(t, f.db, "reader", models.RoleUser)
	require.NoError(t, f.subs.Create(ctx, &models.Subscription{
		SubscriberID:   reader.ID,
		SubscribedToID: author.ID,
	}))

	post := newTestPost(t, f.db, author, "announcement")
	_, err := fanout.OnPostPublished(ctx, post, author)
	require.NoError(t, err)

	count, err := svc.CountUnread(ctx, reader)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	unread, err := svc.ListUnread(ctx, reader, 20, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "author published a new post: announcement", unread[0].Message)
	assert.Equal(t, "author", unread[0].Actor.Username)

	// Another user cannot mark somebody else's notification read.
	err = svc.MarkRead(ctx, author, unread[0].ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	require.NoError(t, svc.MarkRead(ctx, reader, unread[0].ID))
	count, err = svc.CountUnread(ctx, reader)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotificationInbox_MarkAllRead(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.notifications)
	ctx := context.Background()

	actor := newTestUser(t, f.db, "actor", models.RoleUser)
	reader := newTestUser(t, f.db, "reader", models.RoleUser)

	for _, title := range []string{"one", "two", "three"} {
		post := newTestPost(t, f.db, actor, title)
		created, err := f.notifications.CreateIgnoreDuplicate(ctx, &models.Notification{
			UserID:  reader.ID,
			ActorID: actor.ID,
			PostID:  &post.ID,
			Kind:    models.NotificationNewPost,
			Message: "actor published a new post: " + title,
		})
		require.NoError(t, err)
		require.True(t, created)
	}

	require.NoError(t, svc.MarkAllRead(ctx, reader))

	count, err := svc.CountUnread(ctx, reader)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestNotificationInbox_RequiresViewer(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.notifications)
	ctx := context.Background()

	_, err := svc.ListUnread(ctx, nil, 20, 0)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))

	_, err = svc.CountUnread(ctx, nil)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))
}
