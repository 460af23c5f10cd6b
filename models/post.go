package models

import "time"

// Post status values.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post represents a unit of authored content. Drafts are visible to their author
// only; published posts are publicly readable.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // raw markdown, stored verbatim
	Image     string    `gorm:"size:1024" json:"image"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	Status    string    `gorm:"size:16;not null;default:'draft';index" json:"status"`
	Views     uint      `gorm:"default:0" json:"views"`
	Likes     uint      `gorm:"default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
