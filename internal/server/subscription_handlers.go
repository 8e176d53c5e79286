package server

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Subscribe handles POST /api/subscriptions/subscribe/:username
// @Summary Subscribe to an author
// @Tags subscriptions
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/subscribe/{username} [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Subscribe(c.Context(), s.principal(c), username); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Subscribed to " + username})
}

// Unsubscribe handles DELETE /api/subscriptions/unsubscribe/:username
// @Summary Unsubscribe from an author
// @Tags subscriptions
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/unsubscribe/{username} [delete]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Unsubscribe(c.Context(), s.principal(c), username); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Unsubscribed from " + username})
}

// CheckSubscription handles GET /api/subscriptions/check/:username
// @Summary Check subscription state
// @Tags subscriptions
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} object{subscribed=bool}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/check/{username} [get]
func (s *Server) CheckSubscription(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	subscribed, err := s.subscriptionService.IsSubscribed(c.Context(), s.principal(c), username)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"subscribed": subscribed})
}

// GetSubscribers handles GET /api/subscriptions/:username/subscribers
// @Summary List an author's subscribers
// @Tags subscriptions
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/{username}/subscribers [get]
func (s *Server) GetSubscribers(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	users, err := s.subscriptionService.Subscribers(c.Context(), username)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(users)
}

// GetSubscriptions handles GET /api/subscriptions/:username/subscriptions
// @Summary List the authors a user subscribes to
// @Tags subscriptions
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/{username}/subscriptions [get]
func (s *Server) GetSubscriptions(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	users, err := s.subscriptionService.Subscriptions(c.Context(), username)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(users)
}
