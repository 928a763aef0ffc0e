package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification tells a user that someone interacted with them or their content.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	ActorID   uint             `gorm:"not null" json:"actor_id"`
	Actor     *User            `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Type      NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	PostID    *uint            `json:"post_id,omitempty"`
	Message   string           `json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}
