package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"creepycorners/internal/cache"
	"creepycorners/internal/media"
	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/observability"
	"creepycorners/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxContentLen = 5000

// CreatePostInput carries a new post. Media is required.
type CreatePostInput struct {
	UserID  uint
	Content string
	Media   *media.Upload
}

// ListPostsInput filters and pages the feed. OwnerID 0 means every owner.
type ListPostsInput struct {
	OwnerID  uint
	ViewerID uint
	Limit    int
	Offset   int
}

// PostService creates posts, lists feeds and toggles likes.
type PostService struct {
	posts   repository.PostRepository
	media   MediaStore
	notes   *NotificationService
	cache   *cache.Cache
	feedTTL time.Duration
}

// NewPostService wires a PostService. notes and c may be nil.
func NewPostService(posts repository.PostRepository, store MediaStore, notes *NotificationService, c *cache.Cache, feedTTL time.Duration) *PostService {
	if feedTTL <= 0 {
		feedTTL = cache.FeedTTL
	}
	return &PostService{
		posts:   posts,
		media:   store,
		notes:   notes,
		cache:   c,
		feedTTL: feedTTL,
	}
}

// CreatePost ingests the media, then writes the post owned by in.UserID.
// If the post cannot be written the stored file is removed again.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "posts.Create", attribute.Int("user.id", int(in.UserID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.Media == nil || in.Media.Body == nil {
		return nil, models.NewMediaRequiredError()
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}

	ref, err := s.media.Ingest(ctx, in.Media)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		UserID:       in.UserID,
		Content:      in.Content,
		MediaURL:     ref.URL,
		MediaType:    ref.Kind,
		ThumbnailURL: ref.ThumbnailURL,
		Likes:        []uint{},
		Comments:     []models.Comment{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if rmErr := s.media.Remove(ref.Name); rmErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove orphaned media",
				slog.String("file", ref.Name), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(string(post.MediaType)).Inc()
	s.invalidateFeed(ctx, in.UserID)
	return post, nil
}

// ListPosts returns posts newest first. Owner-filtered pages are cached.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	filter := repository.PostFilter{OwnerID: in.OwnerID, Limit: in.Limit, Offset: in.Offset}

	var posts []*models.Post
	if in.OwnerID == 0 {
		var err error
		if posts, err = s.posts.List(ctx, filter); err != nil {
			return nil, err
		}
	} else {
		gen := s.cache.Generation(ctx, cache.UserFeedGenKey(in.OwnerID))
		key := cache.UserFeedPageKey(in.OwnerID, gen, in.Limit, in.Offset)
		err := s.cache.Aside(ctx, key, &posts, s.feedTTL, func() error {
			var err error
			posts, err = s.posts.List(ctx, filter)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	markLiked(posts, in.ViewerID)
	return posts, nil
}

// GetPost returns one post with its likes and comments.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	markLiked([]*models.Post{post}, viewerID)
	return post, nil
}

// SearchPosts matches content or owner username.
func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	posts, err := s.posts.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	markLiked(posts, viewerID)
	return posts, nil
}

// ToggleLike likes the post if userID has not liked it yet, otherwise unlikes it.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (res *models.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "posts.ToggleLike",
		attribute.Int("user.id", int(userID)),
		attribute.Int("post.id", int(postID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	ownerID, err := s.posts.OwnerID(ctx, postID)
	if err != nil {
		return nil, err
	}

	res, err = s.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	state := "unliked"
	if res.Liked {
		state = "liked"
		s.notes.Notify(ctx, NotifyInput{
			RecipientID: ownerID,
			ActorID:     userID,
			Type:        models.NotificationLike,
			PostID:      &postID,
		})
	}
	observability.LikeToggles.WithLabelValues(state).Inc()
	s.invalidateFeed(ctx, ownerID)
	return res, nil
}

func (s *PostService) invalidateFeed(ctx context.Context, ownerID uint) {
	s.cache.Bump(ctx, cache.UserFeedGenKey(ownerID))
}

// markLiked sets the per-viewer Liked flag from the like set.
func markLiked(posts []*models.Post, viewerID uint) {
	for _, p := range posts {
		p.Liked = viewerID != 0 && slices.Contains(p.Likes, viewerID)
	}
}
