// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post in the Quill application.
//
// Image holds the stored filename of the optional featured image, never a
// path. Posts are immutable after creation; there are no edit or delete
// routes.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	// Tags is a comma-joined list as submitted on the make-post form.
	Tags      string         `json:"tags"`
	Image     string         `json:"image"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
