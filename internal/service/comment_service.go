package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"creepycorners/internal/cache"
	"creepycorners/internal/models"
	"creepycorners/internal/observability"
	"creepycorners/internal/repository"
)

const maxCommentLen = 2000

// AddCommentInput is a comment appended to PostID by UserID.
type AddCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

// CommentService appends comments to posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	notes    *NotificationService
	cache    *cache.Cache
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, notes *NotificationService, c *cache.Cache) *CommentService {
	return &CommentService{comments: comments, posts: posts, notes: notes, cache: c}
}

// AddComment trims the text, appends the comment and returns it with the new count.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, int64, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, 0, models.NewEmptyTextError()
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, 0, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	ownerID, err := s.posts.OwnerID(ctx, in.PostID)
	if err != nil {
		return nil, 0, err
	}

	comment := &models.Comment{PostID: in.PostID, UserID: in.UserID, Text: text}
	count, err := s.comments.Append(ctx, comment)
	if err != nil {
		return nil, 0, err
	}

	observability.CommentsCreated.Inc()
	s.cache.Bump(ctx, cache.UserFeedGenKey(ownerID))
	s.notes.Notify(ctx, NotifyInput{
		RecipientID: ownerID,
		ActorID:     in.UserID,
		Type:        models.NotificationComment,
		PostID:      &in.PostID,
	})
	return comment, count, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.OwnerID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}
