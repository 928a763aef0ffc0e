package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	thumbnailSuffix  = ".thumb.webp"
	thumbnailMaxSide = 480
	thumbnailQuality = 70

	// maxPreviewPixels bounds what is decoded for a preview; larger images are stored as is.
	maxPreviewPixels = 40_000_000
)

var (
	errNotAnImage    = errors.New("not a decodable image")
	errTooManyPixels = fmt.Errorf("%w: more than %d pixels", errNotAnImage, maxPreviewPixels)
)

// writeThumbnail decodes src and writes a WebP preview no larger than
// thumbnailMaxSide on either side.
func writeThumbnail(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return errNotAnImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPreviewPixels {
		return errTooManyPixels
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return errNotAnImage
	}

	preview := resizeToFit(decoded, thumbnailMaxSide, thumbnailMaxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, preview, &webp.Options{Quality: thumbnailQuality}); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o640)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
