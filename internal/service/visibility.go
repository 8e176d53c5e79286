// Package service implements the application's business logic.
package service

import (
	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

// IsPostVisible decides whether viewer may see post. It is a pure predicate:
// every read path (single post, profile listing, feed) goes through it so the
// rules cannot drift apart.
//
// A nil viewer is an anonymous reader and sees only non-hidden posts. Banned
// viewers see nothing. Hidden posts stay visible to their owner and to
// admins.
func IsPostVisible(viewer *models.User, post *models.Post) bool {
	if post == nil {
		return false
	}
	if viewer != nil && viewer.IsBanned {
		return false
	}
	if !post.Hidden {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == post.UserID || viewer.IsAdmin()
}
