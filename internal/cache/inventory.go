package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	UserFeedGenKeyPrefix  = "posts:user:%d:gen"
	UserFeedPageKeyPrefix = "posts:user:%d:g%d:%d:%d"
	RevokedTokenKeyPrefix = "blacklist:%s"
)

const (
	UserTTL = 5 * time.Minute
	FeedTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserFeedGenKey(ownerID uint) string {
	return fmt.Sprintf(UserFeedGenKeyPrefix, ownerID)
}

func UserFeedPageKey(ownerID uint, gen int64, limit, offset int) string {
	return fmt.Sprintf(UserFeedPageKeyPrefix, ownerID, gen, limit, offset)
}

func RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, tokenID)
}
