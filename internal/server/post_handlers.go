// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/observability"
	"github.com/AHMED-techNOP/01BLOG/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts (multipart: title, description, optional media)
// @Summary Publish a post
// @Description Publish a new post with optional media attachment
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Post title"
// @Param description formData string true "Post body"
// @Param media formData file false "Media attachment"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	author := s.principal(c)

	in := service.CreatePostInput{
		Author:      author,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	if fileHeader, err := c.FormFile("media"); err == nil && fileHeader != nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read media upload"))
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				log.Printf("failed to close upload: %v", cerr)
			}
		}()
		in.Media = io.Reader(file)
		in.MediaName = fileHeader.Filename
	}

	post, err := s.postService.CreatePost(c.Context(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	// Fan-out runs detached from the request: the publish response never
	// waits on notification delivery.
	s.dispatchFanout(post, author)

	s.publishBroadcastEvent(EventPostCreated, map[string]interface{}{
		"post_id":    post.ID,
		"author_id":  post.UserID,
		"created_at": post.CreatedAt.UTC().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// dispatchFanout runs the notification fan-out on a background goroutine
// scoped to the server lifetime, not the HTTP request.
func (s *Server) dispatchFanout(post *models.Post, author *models.User) {
	ctx := s.shutdownCtx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())
	go func() {
		if _, err := s.fanoutService.OnPostPublished(ctx, post, author); err != nil {
			log.Printf("fan-out for post %d failed: %v", post.ID, err)
		}
	}()
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description List posts newest first, hidden posts filtered by viewer
// @Tags posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	viewer := s.optionalPrincipal(c)

	posts, err := s.postService.ListPosts(c.Context(), viewer, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalPrincipal(c)

	post, err := s.postService.GetPost(c.Context(), id, viewer)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/posts/user/:username
// @Summary List a user's posts
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/user/{username} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username, err := s.parseUsername(c)
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	viewer := s.optionalPrincipal(c)

	posts, err := s.postService.GetUserPosts(c.Context(), username, viewer, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Update title/description; empty fields keep their value
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{title=string,description=string} true "Fields to update"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Principal:   s.principal(c),
		PostID:      id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), s.principal(c), id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), s.principal(c), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnlikePost(c.Context(), s.principal(c), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}
