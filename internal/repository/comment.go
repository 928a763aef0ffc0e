package repository

import (
	"context"

	"creepycorners/internal/models"

	"gorm.io/gorm"
)

// CommentRepository appends comments to posts. Comments are never edited or removed.
type CommentRepository interface {
	Append(ctx context.Context, comment *models.Comment) (int64, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Append inserts comment after checking its post exists and returns the new
// comment count. comment.User is loaded for the response.
func (r *commentRepository) Append(ctx context.Context, comment *models.Comment) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return err
		}
		if err := tx.Omit("User").Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("post_id = ?", comment.PostID).Count(&count).Error
	})
	if err != nil {
		return 0, notFoundOr(err, "Post", comment.PostID)
	}

	var author models.User
	if err := r.db.WithContext(ctx).First(&author, comment.UserID).Error; err == nil {
		comment.User = author.Redact()
	}
	return count, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range comments {
		comments[i].User.Redact()
	}
	return comments, nil
}
