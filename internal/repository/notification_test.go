package repository

import (
	"context"
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_CreateIgnoreDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")
	post := createTestPost(t, db, author, "hello")

	n := &models.Notification{
		UserID:  follower.ID,
		ActorID: author.ID,
		PostID:  &post.ID,
		Kind:    models.NotificationNewPost,
		Message: "author published a new post: hello",
	}
	created, err := repo.CreateIgnoreDuplicate(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &models.Notification{
		UserID:  follower.ID,
		ActorID: author.ID,
		PostID:  &post.ID,
		Kind:    models.NotificationNewPost,
		Message: "author published a new post: hello",
	}
	created, err = repo.CreateIgnoreDuplicate(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created, "same (recipient, post, kind) must not produce a second row")

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestNotificationRepository_UnreadLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	follower := createTestUser(t, db, "follower")
	other := createTestUser(t, db, "other")
	p1 := createTestPost(t, db, author, "one")
	p2 := createTestPost(t, db, author, "two")

	for _, p := range []*models.Post{p1, p2} {
		id := p.ID
		_, err := repo.CreateIgnoreDuplicate(ctx, &models.Notification{
			UserID:  follower.ID,
			ActorID: author.ID,
			PostID:  &id,
			Kind:    models.NotificationNewPost,
			Message: "author published a new post: " + p.Title,
		})
		require.NoError(t, err)
	}

	unread, err := repo.ListUnread(ctx, follower.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	count, err := repo.CountUnread(ctx, follower.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	t.Run("mark read is scoped to the owner", func(t *testing.T) {
		err := repo.MarkRead(ctx, unread[0].ID, other.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	require.NoError(t, repo.MarkRead(ctx, unread[0].ID, follower.ID))
	count, err = repo.CountUnread(ctx, follower.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.MarkAllRead(ctx, follower.ID))
	count, err = repo.CountUnread(ctx, follower.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
