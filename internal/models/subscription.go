package models

import (
	"time"
)

// Subscription is a directed follow edge from a subscriber to another user.
// The (subscriber, subscribed-to) pair is unique and self-loops are rejected
// at the service layer.
type Subscription struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriberID   uint      `gorm:"not null;uniqueIndex:idx_subscriber_subscribed_to" json:"subscriber_id"`
	SubscribedToID uint      `gorm:"not null;uniqueIndex:idx_subscriber_subscribed_to" json:"subscribed_to_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Relationships
	Subscriber   User `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	SubscribedTo User `gorm:"foreignKey:SubscribedToID" json:"subscribed_to,omitempty"`
}
