// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the authorization role assigned to a user account.
type Role string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "USER"
	// RoleAdmin grants access to the moderation endpoints.
	RoleAdmin Role = "ADMIN"
)

// User represents a registered account on the platform.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsBanned  bool      `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
