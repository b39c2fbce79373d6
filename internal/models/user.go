// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the Quill application.
//
// Password is stored exactly as supplied at signup and compared with direct
// string equality at login. This mirrors the documented current behavior of
// the product; it is intentionally not hashed here.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	FullName     string `json:"fullname"`
	Bio          string `json:"bio"`
	About        string `gorm:"type:text" json:"about"`
	Profession   string `json:"profession"`
	Education    string `json:"education"`
	Country      string `json:"country"`
	City         string `json:"city"`
	ProfileImage string `json:"profile_image"`
	// Joined is back-filled on the user's first authenticated visit to the
	// home page when still empty.
	Joined    string         `json:"joined"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Links     []Link         `gorm:"foreignKey:UserID" json:"links,omitempty"`
	Skills    []Skill        `gorm:"foreignKey:UserID" json:"skills,omitempty"`
}

// DisplayName returns the name shown next to posts and comments.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
