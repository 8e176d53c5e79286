package service

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

// Action names something a principal can attempt against a resource.
type Action string

const (
	ActionUpdatePost    Action = "post.update"
	ActionDeletePost    Action = "post.delete"
	ActionDeleteComment Action = "comment.delete"
	ActionModerateUser  Action = "user.moderate"
	ActionModeratePost  Action = "post.moderate"
)

// CommentResource pairs a comment with its parent post so ownership of
// either can authorize deletion.
type CommentResource struct {
	Comment *models.Comment
	Post    *models.Post
}

// CanAct is the single authorization predicate. All role and ownership
// checks live here; handlers and services ask this one question instead of
// re-deriving the rules.
//
// Admins may do everything except moderate another admin: admin accounts
// can never be banned, deleted, or have their content hidden by a peer.
func CanAct(principal *models.User, action Action, resource interface{}) bool {
	if principal == nil || principal.IsBanned {
		return false
	}

	switch action {
	case ActionUpdatePost, ActionDeletePost:
		post, ok := resource.(*models.Post)
		if !ok || post == nil {
			return false
		}
		return post.UserID == principal.ID || principal.IsAdmin()

	case ActionDeleteComment:
		res, ok := resource.(CommentResource)
		if !ok || res.Comment == nil {
			return false
		}
		if res.Comment.UserID == principal.ID {
			return true
		}
		if res.Post != nil && res.Post.UserID == principal.ID {
			return true
		}
		return principal.IsAdmin()

	case ActionModerateUser:
		target, ok := resource.(*models.User)
		if !ok || target == nil {
			return false
		}
		return principal.IsAdmin() && !target.IsAdmin()

	case ActionModeratePost:
		_, ok := resource.(*models.Post)
		return ok && principal.IsAdmin()
	}

	return false
}
