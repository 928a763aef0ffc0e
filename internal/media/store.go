// Package media persists uploaded files and hands back public references.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultUploadDir = "uploads"
	PublicPrefix     = "/uploads/"
)

// ErrTooLarge is wrapped by the validation error returned when an upload
// exceeds the configured limit.
var ErrTooLarge = errors.New("media file too large")

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Reference is a durable, publicly resolvable pointer to stored media.
type Reference struct {
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Kind         models.MediaKind `json:"kind"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Size         int64            `json:"size"`
}

// Options configure a Store.
type Options struct {
	Dir        string
	BaseURL    string
	MaxBytes   int64
	Thumbnails bool
}

// Store writes uploads to a local directory served at /uploads.
type Store struct {
	dir        string
	baseURL    string
	maxBytes   int64
	thumbnails bool
	now        func() time.Time
}

// NewStore returns a Store rooted at opts.Dir.
func NewStore(opts Options) *Store {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &Store{
		dir:        dir,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxBytes:   opts.MaxBytes,
		thumbnails: opts.Thumbnails,
		now:        time.Now,
	}
}

// Dir is the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Ingest writes the upload under a timestamp-derived name that keeps the
// original extension, classifies it by declared MIME type and returns its URL.
func (s *Store) Ingest(ctx context.Context, up *Upload) (ref *Reference, err error) {
	if up == nil || up.Body == nil {
		return nil, models.NewMediaRequiredError()
	}

	kind := models.MediaKindForMIME(up.ContentType)
	ctx, span := observability.StartSpan(ctx, "media.Ingest",
		attribute.String("media.kind", string(kind)),
		attribute.String("media.content_type", up.ContentType),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, models.NewInternalError(err)
	}

	name := s.fileName(up.Filename)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	src := up.Body
	if s.maxBytes > 0 {
		src = io.LimitReader(up.Body, s.maxBytes+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return nil, models.NewInternalError(copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return nil, models.NewInternalError(closeErr)
	case s.maxBytes > 0 && written > s.maxBytes:
		_ = os.Remove(path)
		return nil, &models.AppError{
			Code:    models.CodeValidation,
			Message: fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)),
			Err:     ErrTooLarge,
		}
	case written == 0:
		_ = os.Remove(path)
		return nil, models.NewMediaRequiredError()
	}

	ref = &Reference{
		Name: name,
		URL:  s.URL(name),
		Kind: kind,
		Size: written,
	}
	observability.MediaBytesIngested.WithLabelValues(string(kind)).Add(float64(written))

	if kind == models.MediaKindImage && s.thumbnails {
		thumbName := name + thumbnailSuffix
		if thumbErr := writeThumbnail(path, filepath.Join(s.dir, thumbName)); thumbErr == nil {
			ref.ThumbnailURL = s.URL(thumbName)
		} else if !errors.Is(thumbErr, errNotAnImage) {
			middleware.Logger.WarnContext(ctx, "thumbnail generation failed",
				slog.String("file", name), slog.String("error", thumbErr.Error()))
		}
	}

	return ref, nil
}

// Remove deletes a stored file and its preview. Missing files are ignored.
func (s *Store) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid media name %q", name)
	}
	for _, p := range []string{filepath.Join(s.dir, name), filepath.Join(s.dir, name+thumbnailSuffix)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// URL returns the public address of a stored file.
func (s *Store) URL(name string) string {
	return s.baseURL + PublicPrefix + name
}

// fileName is <unix-nanos>-<8 hex><ext>. The random suffix keeps two uploads in
// the same nanosecond apart.
func (s *Store) fileName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixNano(), uuid.New().String()[:8], ext)
}
