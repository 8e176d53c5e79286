package server

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUnreadNotifications handles GET /api/notifications/unread
// @Summary List unread notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Notification
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/unread [get]
func (s *Server) GetUnreadNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	notifs, err := s.notificationService.ListUnread(c.Context(), s.principal(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(notifs)
}

// GetUnreadNotificationCount handles GET /api/notifications/unread/count
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} object{count=int}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/unread/count [get]
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	count, err := s.notificationService.CountUnread(c.Context(), s.principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.Context(), s.principal(c), id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

// MarkAllNotificationsRead handles PUT /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notifications/read-all [put]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.Context(), s.principal(c)); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}
