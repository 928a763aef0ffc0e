package server

import (
	"creepycorners/internal/middleware"
	"creepycorners/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest is the body of POST /api/posts/:postId/comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// CreatePost handles POST /api/upload and POST /api/posts/upload
// @Summary Upload media as a post
// @Description Multipart upload: "media" file (required) and optional "content" text
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param media formData file true "Image or video"
// @Param content formData string false "Caption"
// @Success 201 {object} object{message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/upload [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	upload, closeUpload, err := formUpload(c, "media")
	if err != nil {
		return mapServiceError(c, err)
	}
	defer closeUpload()

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  middleware.UserID(c),
		Content: c.FormValue("content"),
		Media:   upload,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Media uploaded successfully",
		"post":    post,
	})
}

// GetPosts handles GET /api/posts
// @Summary Feed
// @Description All posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 100); omit for every post"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := listPagination(c)
	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		ViewerID: middleware.UserID(c),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/posts/user/:userId
// @Summary Posts of one user
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	page := listPagination(c)
	posts, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		OwnerID:  userID,
		ViewerID: middleware.UserID(c),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:postId
// @Summary Single post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// SearchPosts handles GET /api/posts/search
// @Summary Search posts
// @Description Case-insensitive match on content or owner username
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param q query string true "Query"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)
	posts, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"), page.Limit, page.Offset, middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// ToggleLike handles POST /api/posts/:postId/like
// @Summary Like or unlike
// @Description Flips the caller's like on the post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	res, err := s.postService.ToggleLike(c.UserContext(), middleware.UserID(c), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// AddComment handles POST /api/posts/:postId/comment
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} object{comment=models.Comment,commentCount=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comment [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return mapServiceError(c, errInvalidBody)
	}

	comment, count, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		UserID: middleware.UserID(c),
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"comment":      comment,
		"commentCount": count,
	})
}

// GetComments handles GET /api/posts/:postId/comments
// @Summary Comments of a post
// @Description Oldest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}
