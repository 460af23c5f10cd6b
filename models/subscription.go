package models

import "time"

// Subscription is a directed follow relationship from a subscriber to an author.
// The composite unique index is the real duplicate guard: the handler pre-check is
// advisory and concurrent subscribe attempts fall through to the constraint.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_author" json:"subscriber_id"`
	AuthorID     uint      `gorm:"not null;uniqueIndex:idx_subscriber_author;index" json:"author_id"`
	SubscribedAt time.Time `gorm:"autoCreateTime" json:"subscribed_at"`
	Subscriber   User      `gorm:"foreignKey:SubscriberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subscriber,omitempty"`
	Author       User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
}
