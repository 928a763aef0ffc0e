package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("creating post: %w", NewMediaRequiredError())

	assert.True(t, HasCode(wrapped, CodeMediaRequired))
	assert.False(t, HasCode(wrapped, CodeEmptyText))
	assert.True(t, errors.Is(wrapped, &AppError{Code: CodeMediaRequired}))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestAppErrorMessage(t *testing.T) {
	err := NewInternalError(errors.New("connection reset"))
	assert.Equal(t, "Internal server error: connection reset", err.Error())
	assert.Equal(t, "connection reset", errors.Unwrap(err).Error())

	assert.Equal(t, "Post with ID 9 not found", NewNotFoundError("Post", 9).Error())
}

func TestMediaKindForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want MediaKind
	}{
		{"video/mp4", MediaKindVideo},
		{"VIDEO/quicktime", MediaKindVideo},
		{"image/png", MediaKindImage},
		{"application/octet-stream", MediaKindImage},
		{"", MediaKindImage},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaKindForMIME(tt.mime))
		})
	}
}
