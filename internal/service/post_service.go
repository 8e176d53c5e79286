package service

import (
	"context"
	"io"

	"github.com/AHMED-techNOP/01BLOG/internal/media"
	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
	"github.com/AHMED-techNOP/01BLOG/internal/validation"
)

// PostService owns the post lifecycle: publish, read, update, delete.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	media    media.Store
}

// CreatePostInput carries the publish payload. Media is optional.
type CreatePostInput struct {
	Author      *models.User
	Title       string
	Description string
	Media       io.Reader
	MediaName   string
}

// UpdatePostInput carries the edit payload; empty fields keep their value.
type UpdatePostInput struct {
	Principal   *models.User
	PostID      uint
	Title       string
	Description string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	mediaStore media.Store,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		media:    mediaStore,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Author == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if in.Author.IsBanned {
		return nil, models.NewForbiddenError("Account is banned")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var mediaURL string
	if in.Media != nil && in.MediaName != "" {
		ref, err := s.media.Save(in.Media, in.MediaName)
		if err != nil {
			return nil, err
		}
		mediaURL = ref
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		MediaURL:    mediaURL,
		UserID:      in.Author.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		// The post row never existed; do not leave the blob behind.
		if mediaURL != "" {
			s.media.Delete(mediaURL)
		}
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.Author.ID)
}

// GetPost returns the post if the viewer may see it. Hidden posts surface as
// not found to ineligible viewers rather than leaking their existence.
func (s *PostService) GetPost(ctx context.Context, id uint, viewer *models.User) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID(viewer))
	if err != nil {
		return nil, err
	}
	if !IsPostVisible(viewer, post) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// ListPosts returns the global listing of posts visible to the viewer.
func (s *PostService) ListPosts(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Post, error) {
	includeHidden := viewer != nil && viewer.IsAdmin()
	posts, err := s.postRepo.List(ctx, limit, offset, viewerID(viewer), includeHidden)
	if err != nil {
		return nil, err
	}
	return filterVisible(viewer, posts), nil
}

// GetUserPosts returns a single author's posts visible to the viewer.
func (s *PostService) GetUserPosts(ctx context.Context, username string, viewer *models.User, limit, offset int) ([]*models.Post, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	posts, err := s.postRepo.GetByUserID(ctx, author.ID, limit, offset, viewerID(viewer), viewer.IsAdmin())
	if err != nil {
		return nil, err
	}
	return filterVisible(viewer, posts), nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, viewerID(in.Principal))
	if err != nil {
		return nil, err
	}
	if !CanAct(in.Principal, ActionUpdatePost, post) {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != "" {
		if err := validation.ValidateTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = in.Title
	}
	if in.Description != "" {
		if err := validation.ValidateDescription(in.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Description = in.Description
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and all dependent rows; the media blob goes
// last and only best-effort.
func (s *PostService) DeletePost(ctx context.Context, principal *models.User, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID(principal))
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionDeletePost, post) {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if post.MediaURL != "" {
		s.media.Delete(post.MediaURL)
	}
	return nil
}

// LikePost records a like; liking twice is a conflict.
func (s *PostService) LikePost(ctx context.Context, viewer *models.User, postID uint) (*models.Post, error) {
	if _, err := s.GetPost(ctx, postID, viewer); err != nil {
		return nil, err
	}
	created, err := s.postRepo.Like(ctx, viewer.ID, postID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.NewConflictError("Post already liked")
	}
	return s.postRepo.GetByID(ctx, postID, viewer.ID)
}

func (s *PostService) UnlikePost(ctx context.Context, viewer *models.User, postID uint) (*models.Post, error) {
	if _, err := s.GetPost(ctx, postID, viewer); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, viewer.ID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, viewer.ID)
}

func viewerID(viewer *models.User) uint {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}

func filterVisible(viewer *models.User, posts []*models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if IsPostVisible(viewer, p) {
			out = append(out, p)
		}
	}
	return out
}
