package seed

import (
	"testing"

	"creepycorners/internal/models"
	"creepycorners/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.NumUsers = 6
	opts.NumPosts = 15
	opts.Seed = 42
	opts.HashCost = bcrypt.MinCost
	return opts
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, testOptions())

	res, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 15, res.Posts)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(DefaultPassword)))

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followee_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.LessOrEqual(t, likes, int64(res.Likes))
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, testOptions())
	_, err := s.Run()
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	for _, m := range []any{&models.User{}, &models.Post{}, &models.Like{}, &models.Comment{}, &models.Follow{}} {
		var n int64
		require.NoError(t, db.Unscoped().Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}

func TestSeeder_NoUsers(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	opts := testOptions()
	opts.NumUsers = 0

	res, err := NewSeeder(db, opts).Run()
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
