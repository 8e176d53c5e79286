package server

import (
	"strings"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// GetAdminUsers handles GET /api/admin/users
// @Summary List users for moderation
// @Tags admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 100)

	users, err := s.userRepo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(users)
}

// BanUser handles POST /api/admin/users/:id/ban
// @Summary Ban a user
// @Description Admin accounts can never be banned
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/ban [post]
func (s *Server) BanUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.SetUserBanned(c.Context(), s.principal(c), targetID, true); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User banned"})
}

// UnbanUser handles POST /api/admin/users/:id/unban
// @Summary Unban a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/unban [post]
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.SetUserBanned(c.Context(), s.principal(c), targetID, false); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User unbanned"})
}

// DeleteUserAsAdmin handles DELETE /api/admin/users/:id. The delete
// cascades over posts, likes, comments, subscriptions, notifications and
// reports in one transaction.
// @Summary Delete a user account
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (s *Server) DeleteUserAsAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeleteUser(c.Context(), s.principal(c), targetID); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

// GetAdminPosts handles GET /api/admin/posts. Hidden posts are included
// for the moderation view.
// @Summary List all posts including hidden
// @Tags admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/posts [get]
func (s *Server) GetAdminPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	posts, err := s.postService.ListPosts(c.Context(), s.principal(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(posts)
}

// HidePost handles POST /api/admin/posts/:id/hide
// @Summary Hide a post
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/posts/{id}/hide [post]
func (s *Server) HidePost(c *fiber.Ctx) error {
	return s.setPostHidden(c, true, "Post hidden")
}

// UnhidePost handles POST /api/admin/posts/:id/unhide
// @Summary Unhide a post
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/posts/{id}/unhide [post]
func (s *Server) UnhidePost(c *fiber.Ctx) error {
	return s.setPostHidden(c, false, "Post unhidden")
}

func (s *Server) setPostHidden(c *fiber.Ctx, hidden bool, message string) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	principal := s.principal(c)
	if err := s.moderationService.SetPostHidden(c.Context(), principal, postID, hidden); err != nil {
		return models.RespondError(c, err)
	}

	// Tell the author their post's visibility changed.
	if post, getErr := s.postRepo.GetByID(c.Context(), postID, 0); getErr == nil {
		s.publishUserEvent(post.UserID, EventPostModerated, map[string]interface{}{
			"post_id":    post.ID,
			"hidden":     hidden,
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}

	return c.JSON(fiber.Map{"message": message})
}

// DeletePostAsAdmin handles DELETE /api/admin/posts/:id
// @Summary Delete any post
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/posts/{id} [delete]
func (s *Server) DeletePostAsAdmin(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeletePostAsModerator(c.Context(), s.principal(c), postID); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetAdminReports handles GET /api/admin/reports
// @Summary List moderation reports
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status (PENDING, REVIEWED, RESOLVED)"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Report
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	page := parsePagination(c, 100)
	status := strings.TrimSpace(c.Query("status"))

	reports, err := s.moderationService.ListReports(c.Context(), s.principal(c), status, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(reports)
}

// UpdateReportStatus handles PUT /api/admin/reports/:id/status
// @Summary Update a report's status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{id}/status [put]
func (s *Server) UpdateReportStatus(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.UpdateReportStatus(c.Context(), s.principal(c), reportID, strings.TrimSpace(req.Status))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(report)
}

// DeleteReport handles DELETE /api/admin/reports/:id
// @Summary Delete a report
// @Tags admin
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{id} [delete]
func (s *Server) DeleteReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeleteReport(c.Context(), s.principal(c), reportID); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Report deleted"})
}
