package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"creepycorners/internal/cache"
	"creepycorners/internal/media"
	"creepycorners/internal/models"
	"creepycorners/internal/repository"
	"creepycorners/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "")
	dir := t.TempDir()
	svc := NewUserService(
		repository.NewUserRepository(db, nil),
		repository.NewFollowRepository(db),
		media.NewStore(media.Options{Dir: dir, BaseURL: "http://localhost:8000"}),
		nil,
	)
	ctx := context.Background()

	t.Run("username held by another user", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: bob.ID, Username: "alice", Bio: "hi"})
		assert.True(t, models.HasCode(err, models.CodeUsernameTaken))

		unchanged, err := svc.GetProfile(ctx, bob.ID)
		require.NoError(t, err)
		assert.Nil(t, unchanged.User.Username)
		assert.Empty(t, unchanged.User.Bio)
	})

	t.Run("keeping own username is allowed", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: "alice", Bio: "ghost hunter"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.UsernameOrEmpty())
		assert.Equal(t, "ghost hunter", user.Bio)
	})

	t.Run("empty fields are left alone", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, DisplayName: "Alice A."})
		require.NoError(t, err)
		assert.Equal(t, "Alice A.", user.DisplayName)
		assert.Equal(t, "ghost hunter", user.Bio)
		assert.Equal(t, "alice", user.UsernameOrEmpty())
	})

	t.Run("invalid username", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: bob.ID, Username: "no spaces allowed"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("profile picture upload", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID: bob.ID,
			ProfilePictureFile: &media.Upload{
				Filename: "me.png", ContentType: "image/png", Body: bytes.NewReader(testutil.PNG(t, 4, 4)),
			},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(user.ProfilePicture, "http://localhost:8000/uploads/"))
		_, statErr := os.Stat(filepath.Join(dir, filepath.Base(user.ProfilePicture)))
		assert.NoError(t, statErr)
	})

	t.Run("video profile picture rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:         bob.ID,
			CoverPhotoFile: &media.Upload{Filename: "x.mp4", ContentType: "video/mp4", Body: strings.NewReader("v")},
		})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 999, Bio: "x"})
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestUserService_GetPublicProfile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	follows := repository.NewFollowRepository(db)
	svc := NewUserService(repository.NewUserRepository(db, nil), follows, &mediaStoreStub{}, nil)
	ctx := context.Background()

	own, err := svc.GetPublicProfile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, own.User.Email)
	assert.False(t, own.Following)

	other, err := svc.GetPublicProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, other.User.Email)
	assert.False(t, other.Following)

	_, err = follows.Toggle(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	other, err = svc.GetPublicProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, other.Following)
	assert.Equal(t, int64(1), other.Stats.Followers)
}

func TestUserService_UpdateProfileRefreshesCachedPosts(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreatePost(t, db, alice.ID, "the old mill", time.Now())
	posts := NewPostService(repository.NewPostRepository(db), &mediaStoreStub{}, nil, c, time.Minute)
	users := NewUserService(repository.NewUserRepository(db, c), repository.NewFollowRepository(db), &mediaStoreStub{}, c)
	ctx := context.Background()

	before, err := posts.ListPosts(ctx, ListPostsInput{OwnerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, "alice", before[0].User.UsernameOrEmpty())

	_, err = users.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: "mill_ghost"})
	require.NoError(t, err)

	after, err := posts.ListPosts(ctx, ListPostsInput{OwnerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "mill_ghost", after[0].User.UsernameOrEmpty())

	// a no-op update leaves the cached pages alone
	gen := c.Generation(ctx, cache.UserFeedGenKey(alice.ID))
	_, err = users.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, gen, c.Generation(ctx, cache.UserFeedGenKey(alice.ID)))
}
