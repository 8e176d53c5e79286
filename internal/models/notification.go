package models

import (
	"time"
)

// Notification kinds.
const (
	// NotificationNewPost is produced by the publish fan-out for every
	// subscriber of the post's author.
	NotificationNewPost = "NEW_POST"
)

// Notification is a durable per-recipient event record. It is written by the
// fan-out engine (or a direct interaction) and only ever mutated by the
// mark-read operations.
//
// The unique index on (user_id, post_id, kind) is the fan-out dedup key:
// re-running fan-out for an already-delivered post is a no-op per recipient
// instead of a duplicate row.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index;uniqueIndex:idx_recipient_post_kind" json:"user_id"`
	ActorID uint   `gorm:"not null" json:"actor_id"`
	PostID  *uint  `gorm:"uniqueIndex:idx_recipient_post_kind" json:"post_id,omitempty"`
	Kind    string `gorm:"type:varchar(40);not null;uniqueIndex:idx_recipient_post_kind" json:"kind"`
	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"not null;default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Actor User  `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Post  *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
