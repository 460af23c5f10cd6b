package models

import "time"

// Notification type values. Only new_post has an in-process producer (post publish);
// the remaining types are written by external collaborators.
const (
	NotificationTypeNewPost = "new_post"
	NotificationTypeComment = "comment"
	NotificationTypeLike    = "like"
	NotificationTypeFollow  = "follow"
)

// Notification is a recipient-scoped read/unread event record.
type Notification struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RecipientID     uint      `gorm:"not null;index:idx_recipient_read_created,priority:1" json:"recipient_id"`
	Type            string    `gorm:"size:16;not null;default:'new_post'" json:"type"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Message         string    `gorm:"size:1024;not null" json:"message"`
	RelatedPostID   *uint     `json:"related_post_id,omitempty"`
	RelatedAuthorID *uint     `json:"related_author_id,omitempty"`
	Read            bool      `gorm:"not null;default:false;index:idx_recipient_read_created,priority:2" json:"read"`
	CreatedAt       time.Time `gorm:"index:idx_recipient_read_created,priority:3" json:"created_at"`
	RelatedPost     *Post     `gorm:"foreignKey:RelatedPostID" json:"related_post,omitempty"`
	RelatedAuthor   *User     `gorm:"foreignKey:RelatedAuthorID" json:"related_author,omitempty"`
}
