package repository

import (
	"context"
	"errors"

	"creepycorners/internal/cache"
	"creepycorners/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateUser is returned by Create when the email is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// ErrUsernameConflict is returned by UpdateProfile when another row holds the username.
var ErrUsernameConflict = errors.New("username already taken")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error
	Stats(ctx context.Context, id uint) (models.ProfileStats, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserRepository returns a new UserRepository implementation. c may be nil.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: c}
}

// GetByID is cached; the cached copy never carries the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return notFoundOr(r.db.WithContext(ctx).First(&user, id).Error, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateProfile writes only the given columns.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return ErrUsernameConflict
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.Invalidate(ctx, cache.UserKey(id))
	return nil
}

func (r *userRepository) Stats(ctx context.Context, id uint) (models.ProfileStats, error) {
	var stats models.ProfileStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Where("user_id = ?", id).Count(&stats.Posts).Error; err != nil {
		return stats, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("followee_id = ?", id).Count(&stats.Followers).Error; err != nil {
		return stats, models.NewInternalError(err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", id).Count(&stats.Following).Error; err != nil {
		return stats, models.NewInternalError(err)
	}
	return stats, nil
}
