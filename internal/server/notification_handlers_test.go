package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandlers(t *testing.T) {
	s, db := newTestServer(t)
	reader := createTestUser(t, db, "notif_reader", models.RoleUser)
	actor := createTestUser(t, db, "notif_actor", models.RoleUser)
	post := createTestPost(t, db, actor, "Announced")

	seedNotification := func(t *testing.T, message string) *models.Notification {
		t.Helper()
		n := &models.Notification{
			UserID:  reader.ID,
			ActorID: actor.ID,
			PostID:  &post.ID,
			Kind:    models.NotificationNewPost,
			Message: message,
		}
		require.NoError(t, db.Create(n).Error)
		return n
	}

	app := fiber.New()
	app.Get("/notifications/unread", func(c *fiber.Ctx) error {
		asUser(reader)(c)
		return s.GetUnreadNotifications(c)
	})
	app.Get("/notifications/unread/count", func(c *fiber.Ctx) error {
		asUser(reader)(c)
		return s.GetUnreadNotificationCount(c)
	})
	app.Put("/notifications/read-all", func(c *fiber.Ctx) error {
		asUser(reader)(c)
		return s.MarkAllNotificationsRead(c)
	})
	app.Put("/notifications/:id/read", func(c *fiber.Ctx) error {
		asUser(reader)(c)
		return s.MarkNotificationRead(c)
	})

	unreadCount := func(t *testing.T) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications/unread/count", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body.Count
	}

	first := seedNotification(t, "notif_actor published a new post: Announced")
	seedNotification(t, "notif_actor published a new post: Announced again")

	t.Run("unread listing", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notifications/unread", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var notifs []models.Notification
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifs))
		assert.Len(t, notifs, 2)
		assert.Equal(t, 2, unreadCount(t))
	})

	t.Run("mark one read", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/notifications/%d/read", first.ID), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, unreadCount(t))
	})

	t.Run("cannot mark another user's notification", func(t *testing.T) {
		foreign := &models.Notification{
			UserID:  actor.ID,
			ActorID: reader.ID,
			Kind:    models.NotificationNewPost,
			Message: "notif_reader published a new post: mine",
		}
		require.NoError(t, db.Create(foreign).Error)

		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/notifications/%d/read", foreign.ID), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("mark all read", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 0, unreadCount(t))
	})
}
