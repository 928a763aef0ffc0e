package service

import (
	"context"
	"testing"

	"creepycorners/internal/models"
	"creepycorners/internal/notifications"
	"creepycorners/internal/repository"
	"creepycorners/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_ToggleFollow(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sub := rdb.Subscribe(context.Background(), notifications.UserChannel(bob.ID))
	defer sub.Close()
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	notes := NewNotificationService(repository.NewNotificationRepository(db), notifications.NewNotifier(rdb))
	svc := NewFollowService(repository.NewFollowRepository(db), notes)
	ctx := context.Background()

	_, err = svc.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	res, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowResult{Following: true, Followers: 1}, *res)

	msg := <-sub.Channel()
	assert.Contains(t, msg.Payload, `"follow"`)

	res, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowResult{Following: false, Followers: 0}, *res)

	unread, err := notes.MarkAllRead(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
