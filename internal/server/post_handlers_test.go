package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"creepycorners/internal/models"
	"creepycorners/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdPost struct {
	Message string      `json:"message"`
	Post    models.Post `json:"post"`
}

func (e *testEnv) upload(t *testing.T, token, content string, file formFile) models.Post {
	t.Helper()
	resp, body := e.do(t, multipartRequest(t, http.MethodPost, "/api/upload",
		map[string]string{"content": content}, []formFile{file}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[createdPost](t, body).Post
}

func pngFile(t *testing.T) formFile {
	return formFile{field: "media", filename: "corner.png", contentType: "image/png", data: testutil.PNG(t, 4, 4)}
}

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token, aliceID := env.signup(t, "alice@example.com", "pw123")

	// upload
	resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/upload",
		map[string]string{"content": "hello"}, []formFile{pngFile(t)}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[createdPost](t, body)
	assert.Equal(t, "Media uploaded successfully", created.Message)
	post := created.Post
	assert.Equal(t, aliceID, post.UserID)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, models.MediaKindImage, post.MediaType)
	assert.True(t, strings.HasPrefix(post.MediaURL, "http://localhost:8000/uploads/"), post.MediaURL)
	assert.True(t, strings.HasSuffix(post.MediaURL, ".png"), post.MediaURL)

	// feed
	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/posts", nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decode[[]models.Post](t, body)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)
	assert.Equal(t, 0, feed[0].LikeCount)
	require.NotNil(t, feed[0].User)
	assert.Empty(t, feed[0].User.Email)

	likePath := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, likePath, nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, models.LikeResult{Liked: true, Likes: 1}, decode[models.LikeResult](t, body))

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, likePath, nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, models.LikeResult{Liked: false, Likes: 0}, decode[models.LikeResult](t, body))

	commentPath := fmt.Sprintf("/api/posts/%d/comment", post.ID)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, commentPath, map[string]string{"text": "  nice  "}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	comment := decode[struct {
		Comment      models.Comment `json:"comment"`
		CommentCount int            `json:"commentCount"`
	}](t, body)
	assert.Equal(t, "nice", comment.Comment.Text)
	assert.Equal(t, 1, comment.CommentCount)

	resp, body = env.do(t, jsonRequest(t, http.MethodPost, commentPath, map[string]string{"text": "   "}, token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeEmptyText, decode[models.ErrorResponse](t, body).Code)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]models.Comment](t, body)
	require.Len(t, listed, 1)
	assert.Equal(t, "nice", listed[0].Text)

	// single post carries the comment
	resp, body = env.do(t, jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	single := decode[struct {
		Post models.Post `json:"post"`
	}](t, body)
	require.Len(t, single.Post.Comments, 1)
	assert.Equal(t, 1, single.Post.CommentCount)

	// the stored file is served publicly
	path := strings.TrimPrefix(post.MediaURL, "http://localhost:8000")
	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body)
}

func TestCreatePostErrors(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "alice@example.com", "pw123")

	t.Run("no media", func(t *testing.T) {
		resp, body := env.do(t, multipartRequest(t, http.MethodPost, "/api/posts/upload",
			map[string]string{"content": "nothing attached"}, nil, token))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		e := decode[models.ErrorResponse](t, body)
		assert.Equal(t, models.CodeMediaRequired, e.Code)
		assert.Equal(t, "No file uploaded", e.Error)
	})

	t.Run("no session", func(t *testing.T) {
		resp, _ := env.do(t, multipartRequest(t, http.MethodPost, "/api/upload", nil, []formFile{pngFile(t)}, ""))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("video kind", func(t *testing.T) {
		post := env.upload(t, token, "", formFile{field: "media", filename: "clip.MP4", contentType: "video/mp4", data: []byte("not really a video")})
		assert.Equal(t, models.MediaKindVideo, post.MediaType)
		assert.True(t, strings.HasSuffix(strings.ToLower(post.MediaURL), ".mp4"), post.MediaURL)
	})
}

func TestPostRouteErrors(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "alice@example.com", "pw123")

	tests := []struct {
		name           string
		method         string
		path           string
		payload        any
		expectedStatus int
		expectedError  string
	}{
		{name: "bad like id", method: http.MethodPost, path: "/api/posts/abc/like", expectedStatus: http.StatusBadRequest, expectedError: "Invalid post ID"},
		{name: "zero id", method: http.MethodGet, path: "/api/posts/0", expectedStatus: http.StatusBadRequest, expectedError: "Invalid post ID"},
		{name: "missing post like", method: http.MethodPost, path: "/api/posts/999/like", expectedStatus: http.StatusNotFound},
		{name: "missing post comment", method: http.MethodPost, path: "/api/posts/999/comment", payload: map[string]string{"text": "hi"}, expectedStatus: http.StatusNotFound},
		{name: "missing post get", method: http.MethodGet, path: "/api/posts/999", expectedStatus: http.StatusNotFound},
		{name: "missing post comments", method: http.MethodGet, path: "/api/posts/999/comments", expectedStatus: http.StatusNotFound},
		{name: "bad user id", method: http.MethodGet, path: "/api/posts/user/x", expectedStatus: http.StatusBadRequest, expectedError: "Invalid user ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, jsonRequest(t, tt.method, tt.path, tt.payload, token))
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decode[models.ErrorResponse](t, body).Error)
			}
		})
	}
}

func TestUserPostsAndSearch(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.signup(t, "alice@example.com", "pw123")
	bobToken, bobID := env.signup(t, "bob@example.com", "pw123")

	first := env.upload(t, aliceToken, "the abandoned asylum", pngFile(t))
	second := env.upload(t, aliceToken, "a hallway at 3am", pngFile(t))
	env.upload(t, bobToken, "grandma's attic", pngFile(t))

	resp, body := env.do(t, jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/posts/user/%d", aliceID), nil, bobToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := decode[[]models.Post](t, body)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, fmt.Sprintf("/api/posts/user/%d", bobID), nil, bobToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Post](t, body), 1)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/posts?limit=2", nil, bobToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Post](t, body), 2)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/posts/search?q=ASYLUM", nil, bobToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[[]models.Post](t, body)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
}

func TestGetPostsReturnsEveryPostUnlessPaged(t *testing.T) {
	env := newTestEnv(t)
	token, aliceID := env.signup(t, "alice@example.com", "pw123")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 60; i++ {
		testutil.CreatePost(t, env.db, aliceID, fmt.Sprintf("corner %d", i), base.Add(time.Duration(i)*time.Second))
	}

	for _, path := range []string{"/api/posts", fmt.Sprintf("/api/posts/user/%d", aliceID)} {
		resp, body := env.do(t, jsonRequest(t, http.MethodGet, path, nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		posts := decode[[]models.Post](t, body)
		require.Len(t, posts, 60, path)
		assert.Equal(t, "corner 59", posts[0].Content)
		assert.Equal(t, "corner 0", posts[59].Content)
	}

	resp, body := env.do(t, jsonRequest(t, http.MethodGet, "/api/posts?offset=55", nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Post](t, body), 5)

	resp, body = env.do(t, jsonRequest(t, http.MethodGet, "/api/posts?limit=10&offset=5", nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[[]models.Post](t, body)
	require.Len(t, page, 10)
	assert.Equal(t, "corner 54", page[0].Content)
}
