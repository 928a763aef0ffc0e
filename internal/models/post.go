package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// MediaKind classifies an uploaded media file.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaKindForMIME returns video for any video/* type and image for everything else.
func MediaKindForMIME(mimeType string) MediaKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/") {
		return MediaKindVideo
	}
	return MediaKindImage
}

// Post is a media post. The owner never changes after creation.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content      string         `gorm:"type:text;not null;default:''" json:"content"`
	MediaURL     string         `gorm:"not null" json:"media_url"`
	MediaType    MediaKind      `gorm:"type:varchar(10);not null" json:"media_type"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Comments     []Comment      `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Likes holds the ids of users who liked the post; filled at query time.
	Likes []uint `gorm:"-" json:"likes"`
	// LikeCount and CommentCount are computed at query time.
	LikeCount    int  `gorm:"-" json:"like_count"`
	CommentCount int  `gorm:"-" json:"comment_count"`
	Liked        bool `gorm:"-" json:"liked"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}
