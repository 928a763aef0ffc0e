// Package notifications fans user notifications out over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"creepycorners/internal/models"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes notifications to per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. With a nil client every publish is a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel is the channel a user's clients subscribe to.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends n as JSON to the recipient's channel.
func (n *Notifier) PublishUser(ctx context.Context, note *models.Notification) error {
	if n == nil || n.rdb == nil || note == nil {
		return nil
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, UserChannel(note.UserID), payload).Err()
}
