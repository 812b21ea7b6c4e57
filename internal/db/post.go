package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post 定义了文章模型
type Post struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Excerpt     *string    `gorm:"type:text" json:"excerpt"`
	Status      string     `gorm:"size:16;not null;default:draft;index" json:"status"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CategoryID  *string    `gorm:"size:36;index" json:"category_id"`
	Category    *Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	AuthorID    *string    `gorm:"size:64" json:"author_id"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsPublished reports whether the post is publicly visible.
func (p Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// ExcerptText returns the excerpt or an empty string.
func (p Post) ExcerptText() string {
	if p.Excerpt == nil {
		return ""
	}
	return *p.Excerpt
}

// DisplayDate is the publish time, falling back to the last update.
func (p Post) DisplayDate() time.Time {
	if p.PublishedAt != nil && !p.PublishedAt.IsZero() {
		return *p.PublishedAt
	}
	return p.UpdatedAt
}
