package models

import (
	"time"

	"gorm.io/datatypes"
)

// Note is a free-form text note tagged with one or more categories.
type Note struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	UserID     uint                        `gorm:"index;not null" json:"user_id"`
	Title      string                      `gorm:"size:255;not null" json:"title"`
	Content    string                      `gorm:"type:text" json:"content"`
	Categories datatypes.JSONSlice[string] `json:"categories"`
	IsFavorite bool                        `gorm:"not null;default:false" json:"is_favorite"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"index" json:"updated_at"`
}

// HasCategory reports whether the note is tagged with category.
func (n *Note) HasCategory(category string) bool {
	for _, c := range n.Categories {
		if c == category {
			return true
		}
	}
	return false
}
