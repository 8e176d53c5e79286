package server

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Personalized feed
// @Description Posts from followed authors, or the global stream when the viewer follows nobody
// @Tags feed
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.feedService.ComposeFeed(c.Context(), s.principal(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(posts)
}
