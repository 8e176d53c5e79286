package server

import (
	"strings"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports. The target is either a post
// (its author becomes the reported user) or a user account; the kind is
// decided here, at the boundary, and passed down as a tagged value.
// @Summary File a moderation report
// @Tags reports
// @Accept json
// @Produce json
// @Param request body object{target_type=string,post_id=int,user_id=int,reason=string} true "Report target and reason"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req struct {
		TargetType string `json:"target_type"`
		PostID     uint   `json:"post_id"`
		UserID     uint   `json:"user_id"`
		Reason     string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var target models.ReportTarget
	switch strings.ToLower(strings.TrimSpace(req.TargetType)) {
	case string(models.ReportTargetPost):
		target = models.ReportTarget{Kind: models.ReportTargetPost, PostID: req.PostID}
	case string(models.ReportTargetUser):
		target = models.ReportTarget{Kind: models.ReportTargetUser, UserID: req.UserID}
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("target_type must be post or user"))
	}

	report, err := s.moderationService.CreateReport(c.Context(), service.CreateReportInput{
		Reporter: s.principal(c),
		Target:   target,
		Reason:   req.Reason,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}
