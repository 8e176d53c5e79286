package models

import (
	"time"
)

// Report statuses. The intended lifecycle is PENDING -> REVIEWED -> RESOLVED;
// admins may set any of the three values.
const (
	ReportStatusPending  = "PENDING"
	ReportStatusReviewed = "REVIEWED"
	ReportStatusResolved = "RESOLVED"
)

// ReportTargetKind discriminates what a report points at.
type ReportTargetKind string

const (
	// ReportTargetPost reports a specific post (the post's author becomes
	// the reported user).
	ReportTargetPost ReportTargetKind = "post"
	// ReportTargetUser reports a user account directly.
	ReportTargetUser ReportTargetKind = "user"
)

// ReportTarget is the tagged variant resolved at the API boundary. Exactly
// one of the two kinds applies; core logic never infers the type from
// optional-field presence.
type ReportTarget struct {
	Kind   ReportTargetKind
	PostID uint // valid when Kind == ReportTargetPost
	UserID uint // valid when Kind == ReportTargetUser
}

// ValidReportStatus reports whether s is one of the three report statuses.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved:
		return true
	}
	return false
}

// Report is a moderation report filed against a user or one of their posts.
type Report struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ReporterID     uint   `gorm:"not null" json:"reporter_id"`
	ReportedUserID uint   `gorm:"not null;index" json:"reported_user_id"`
	PostID         *uint  `gorm:"index" json:"post_id,omitempty"`
	Reason         string `gorm:"not null" json:"reason"`
	Status         string `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Reporter     User  `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedUser User  `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
	Post         *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
