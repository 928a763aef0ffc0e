package repository

import (
	"context"

	"creepycorners/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID uint) (*models.FollowResult, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle follows or unfollows followeeID, locking the followee row like ToggleLike locks a post.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (*models.FollowResult, error) {
	var result models.FollowResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&target, followeeID).Error; err != nil {
			return err
		}

		removed := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			edge := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
				return err
			}
			result.Following = true
		}

		return tx.Model(&models.Follow{}).Where("followee_id = ?", followeeID).Count(&result.Followers).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "User", followeeID)
	}
	return &result, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
