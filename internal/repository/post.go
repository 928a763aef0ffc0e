package repository

import (
	"context"
	"strings"

	"creepycorners/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows List. A zero OwnerID lists every post; a zero Limit
// returns every matching post after Offset.
type PostFilter struct {
	OwnerID uint
	Limit   int
	Offset  int
}

// PostRepository defines persistence operations for posts and their like sets.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	OwnerID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error)
	ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	posts := []*models.Post{&post}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, err
	}
	return &post, nil
}

// OwnerID returns the id of the user who created the post.
func (r *postRepository) OwnerID(ctx context.Context, id uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, id).Error; err != nil {
		return 0, notFoundOr(err, "Post", id)
	}
	return post.UserID, nil
}

// List returns posts newest first; ties on created_at fall back to id.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	query := r.withDetails(r.db.WithContext(ctx))
	if filter.OwnerID != 0 {
		query = query.Where("posts.user_id = ?", filter.OwnerID)
	}
	query = query.Order("posts.created_at DESC, posts.id DESC")
	if filter.Limit > 0 {
		limit, offset := clampPage(filter.Limit, filter.Offset)
		query = query.Limit(limit).Offset(offset)
	} else if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var posts []*models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Search matches post content or the owner's username, case-insensitively.
func (r *postRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	pattern := "%" + strings.ToLower(query) + "%"

	owners := r.db.WithContext(ctx).Model(&models.User{}).Select("id").Where("LOWER(username) LIKE ?", pattern)

	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("LOWER(posts.content) LIKE ? OR posts.user_id IN (?)", pattern, owners).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ToggleLike flips the caller's membership in the like set inside one
// transaction. The post row lock serializes toggles on the same post, so two
// racing calls from one user always net out to their sequential result.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	var result models.LikeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		removed := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.Like{UserID: userID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			result.Liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&result.Likes).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}
	return &result, nil
}

func (r *postRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User")
}

// attachLikes fills Likes, LikeCount and CommentCount with one query for all posts.
func (r *postRepository) attachLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Likes = []uint{}
		p.CommentCount = len(p.Comments)
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
		p.User.Redact()
		for i := range p.Comments {
			p.Comments[i].User.Redact()
		}
	}

	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Select("post_id", "user_id").
		Where("post_id IN ?", ids).
		Order("id ASC").
		Find(&likes).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, l := range likes {
		if p, ok := byID[l.PostID]; ok {
			p.Likes = append(p.Likes, l.UserID)
		}
	}
	for _, p := range posts {
		p.LikeCount = len(p.Likes)
	}
	return nil
}
