package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeed(t *testing.T) {
	s, db := newTestServer(t)
	viewer := createTestUser(t, db, "feed_viewer", models.RoleUser)
	followed := createTestUser(t, db, "feed_followed", models.RoleUser)
	other := createTestUser(t, db, "feed_other", models.RoleUser)

	createTestPost(t, db, followed, "From followed")
	hidden := createTestPost(t, db, followed, "Hidden from followed")
	require.NoError(t, db.Model(hidden).Update("hidden", true).Error)
	createTestPost(t, db, other, "From stranger")

	app := fiber.New()
	app.Get("/feed", func(c *fiber.Ctx) error {
		asUser(viewer)(c)
		return s.GetFeed(c)
	})

	fetchFeed := func(t *testing.T) []models.Post {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/feed", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var posts []models.Post
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
		return posts
	}

	t.Run("no subscriptions falls back to the global listing", func(t *testing.T) {
		posts := fetchFeed(t)
		assert.Len(t, posts, 2)
	})

	t.Run("with subscriptions only followed authors appear", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Subscription{
			SubscriberID:   viewer.ID,
			SubscribedToID: followed.ID,
		}).Error)

		posts := fetchFeed(t)
		require.Len(t, posts, 1)
		assert.Equal(t, "From followed", posts[0].Title)
		assert.Equal(t, followed.ID, posts[0].UserID)
	})

	t.Run("anonymous feed requires auth", func(t *testing.T) {
		anonApp := fiber.New()
		anonApp.Get("/feed", s.GetFeed)
		resp, err := anonApp.Test(httptest.NewRequest(http.MethodGet, "/feed", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
