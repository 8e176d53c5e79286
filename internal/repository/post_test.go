package repository

import (
	"context"
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author, "hello")

	_, err := repo.Like(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{Content: "nice", PostID: post.ID, UserID: viewer.ID}).Error)

	t.Run("decorates counts and liked flag for viewer", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikeCount)
		assert.Equal(t, 1, got.CommentCount)
		assert.True(t, got.IsLiked)
		assert.Equal(t, "author", got.User.Username)
	})

	t.Run("anonymous viewer is never liked", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikeCount)
		assert.False(t, got.IsLiked)
	})

	t.Run("unknown post returns not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999, viewer.ID)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestPostRepository_Like_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author, "hello")

	created, err := repo.Like(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Like(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, created, "second like should be a no-op")

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Unlike(ctx, viewer.ID, post.ID))
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPostRepository_List_HiddenFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	visible := createTestPost(t, db, author, "visible")
	hidden := createTestPost(t, db, author, "hidden")
	require.NoError(t, repo.SetHidden(ctx, hidden.ID, true))

	posts, err := repo.List(ctx, 10, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, visible.ID, posts[0].ID)

	posts, err = repo.List(ctx, 10, 0, 0, true)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestPostRepository_ListByAuthors_Order(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")
	c := createTestUser(t, db, "c")
	p1 := createTestPost(t, db, a, "first")
	p2 := createTestPost(t, db, b, "second")
	createTestPost(t, db, c, "not followed")

	posts, err := repo.ListByAuthors(ctx, []uint{a.ID, b.ID}, 10, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// Same created_at second resolves by id descending.
	assert.Equal(t, p2.ID, posts[0].ID)
	assert.Equal(t, p1.ID, posts[1].ID)

	posts, err = repo.ListByAuthors(ctx, nil, 10, 0, 0, false)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostRepository_ListByAuthors_HiddenDoNotConsumePage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")

	older := createTestPost(t, db, author, "older but visible")
	hiddenA := createTestPost(t, db, author, "second newest")
	hiddenB := createTestPost(t, db, author, "newest")
	require.NoError(t, repo.SetHidden(ctx, hiddenA.ID, true))
	require.NoError(t, repo.SetHidden(ctx, hiddenB.ID, true))

	// A page of 2 must be cut from the visible set: the two hidden posts
	// may not fill the LIMIT and push the visible one off the page.
	posts, err := repo.ListByAuthors(ctx, []uint{author.ID}, 2, 0, reader.ID, false)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, older.ID, posts[0].ID)

	// The author still sees their own hidden posts in the page.
	posts, err = repo.ListByAuthors(ctx, []uint{author.ID}, 2, 0, author.ID, false)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, hiddenB.ID, posts[0].ID)

	// Same contract for the single-author listing.
	posts, err = repo.GetByUserID(ctx, author.ID, 2, 0, reader.ID, false)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, older.ID, posts[0].ID)
}

func TestPostRepository_Delete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author, "doomed")

	_, err := repo.Like(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{Content: "bye", PostID: post.ID, UserID: viewer.ID}).Error)
	require.NoError(t, db.Create(&models.Notification{
		UserID:  viewer.ID,
		ActorID: author.ID,
		PostID:  &post.ID,
		Kind:    models.NotificationNewPost,
		Message: "author published a new post: doomed",
	}).Error)
	require.NoError(t, db.Create(&models.Report{
		ReporterID:     viewer.ID,
		ReportedUserID: author.ID,
		PostID:         &post.ID,
		Reason:         "spam",
		Status:         models.ReportStatusPending,
	}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	for name, model := range map[string]interface{}{
		"likes":         &models.Like{},
		"comments":      &models.Comment{},
		"notifications": &models.Notification{},
		"reports":       &models.Report{},
		"posts":         &models.Post{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "expected no orphan rows in %s", name)
	}
}

func TestPostRepository_Delete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), 42)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
