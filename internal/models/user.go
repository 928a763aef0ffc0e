// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in The Creepiest Corners.
// Username is optional, so it is nullable and only unique among non-null values.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Password       string         `gorm:"not null" json:"-"`
	Username       *string        `gorm:"uniqueIndex" json:"username"`
	DisplayName    string         `json:"display_name"`
	Bio            string         `gorm:"type:text" json:"bio"`
	ProfilePicture string         `json:"profile_picture"`
	CoverPhoto     string         `json:"cover_photo"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// UsernameOrEmpty returns the username, or "" when none has been chosen.
func (u *User) UsernameOrEmpty() string {
	if u == nil || u.Username == nil {
		return ""
	}
	return *u.Username
}

// Redact clears fields only the account owner may see. Users embedded in
// posts, comments and notifications are always redacted.
func (u *User) Redact() *User {
	if u != nil {
		u.Email = ""
	}
	return u
}

// ProfileStats are the counters shown on a profile page.
type ProfileStats struct {
	Posts     int64 `json:"posts"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Profile is a user together with its stats. Following is set when another
// user views the profile and follows its owner.
type Profile struct {
	User      *User        `json:"user"`
	Stats     ProfileStats `json:"stats"`
	Following bool         `json:"following"`
}
