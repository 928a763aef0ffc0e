package models

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowResult is the outcome of a follow toggle.
type FollowResult struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}
