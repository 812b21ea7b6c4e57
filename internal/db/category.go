package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups posts; a post references at most one category.
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
