package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"creepycorners/internal/config"
	"creepycorners/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWTSecret:           "server-test-secret-0123456789abcdef",
		Port:                "0",
		Env:                 "test",
		DBDriver:            "sqlite",
		UploadDir:           t.TempDir(),
		PublicBaseURL:       "http://localhost:8000",
		MediaMaxUploadMB:    2,
		TokenTTLHours:       24,
		AuthCookieEnabled:   true,
		FeedCacheTTLSeconds: 30,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	db := testutil.NewSQLiteDB(t)
	cfg := testConfig(t)
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return &testEnv{app: srv.App(), db: db, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(t *testing.T, method, path string, payload any, token string) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files []formFile, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

// signup registers and logs in, returning the token and user id.
func (e *testEnv) signup(t *testing.T, email, password string) (string, uint) {
	t.Helper()
	resp, body := e.do(t, jsonRequest(t, http.MethodPost, "/api/register", map[string]string{"email": email, "password": password}, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = e.do(t, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}](t, body)
	require.NotEmpty(t, login.Token)
	return login.Token, login.User.ID
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, body)
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "disabled", ready.Checks["redis"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestUnknownRouteUnderAPIRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
