package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"creepycorners/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// CreateUser inserts a user with a fake email and an optional username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:       gofakeit.Email(),
		Password:    "not-a-real-hash",
		DisplayName: gofakeit.Name(),
	}
	if username != "" {
		u.Username = &username
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreatePost inserts an image post owned by userID at the given time.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:    userID,
		Content:   content,
		MediaURL:  "http://localhost:8000/uploads/" + gofakeit.UUID() + ".png",
		MediaType: models.MediaKindImage,
		CreatedAt: at,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// PNG returns an encoded w x h PNG.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
