package service

import (
	"context"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
	"github.com/AHMED-techNOP/01BLOG/internal/validation"
)

// CommentService manages comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment adds a comment to a post the author can see.
func (s *CommentService) CreateComment(ctx context.Context, author *models.User, postID uint, content string) (*models.Comment, error) {
	if author == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if author.IsBanned {
		return nil, models.NewForbiddenError("Account is banned")
	}
	if err := validation.ValidateComment(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID, author.ID)
	if err != nil {
		return nil, err
	}
	if !IsPostVisible(author, post) {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comment := &models.Comment{
		Content: content,
		PostID:  postID,
		UserID:  author.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetPostComments lists a post's comments, oldest first, for viewers who can
// see the post.
func (s *CommentService) GetPostComments(ctx context.Context, viewer *models.User, postID uint, limit, offset int) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID(viewer))
	if err != nil {
		return nil, err
	}
	if !IsPostVisible(viewer, post) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return s.commentRepo.GetByPostID(ctx, postID, limit, offset)
}

// DeleteComment removes a comment. The comment's author, the post's owner,
// and admins may delete.
func (s *CommentService) DeleteComment(ctx context.Context, principal *models.User, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID, viewerID(principal))
	if err != nil {
		return err
	}
	if !CanAct(principal, ActionDeleteComment, CommentResource{Comment: comment, Post: post}) {
		return models.NewForbiddenError("You cannot delete this comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
