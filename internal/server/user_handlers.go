package server

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user profile
// @Tags users
// @Produce json
// @Success 200 {object} service.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	principal := s.principal(c)
	if principal == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Authorization required"))
	}

	profile, err := s.userService.GetProfile(c.Context(), principal, principal.Username)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(profile)
}

// GetAllUsers handles GET /api/users
// @Summary User directory
// @Description Users with subscriber counts and the viewer's subscription state
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} service.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	profiles, err := s.userService.ListUsers(c.Context(), s.principal(c), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(profiles)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Public user profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetProfile(c.Context(), s.principal(c), username)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(profile)
}
