// Package imaging downscales meal photos before they go to the vision model.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxEdge = 600
	DefaultQuality = 50
	// MaxPixels caps the decoded size of an upload.
	MaxPixels = 40_000_000
)

// ErrTooManyPixels is returned for images whose header declares more than
// MaxPixels pixels. Nothing is decoded in that case.
var ErrTooManyPixels = errors.New("image exceeds pixel limit")

// Shrinker bounds the longer edge of an image and re-encodes it as JPEG.
type Shrinker struct {
	MaxEdge int
	Quality int
}

// New creates a Shrinker. Non-positive values take the defaults.
func New(maxEdge, quality int) *Shrinker {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Shrinker{MaxEdge: maxEdge, Quality: quality}
}

// Shrink returns a JPEG no larger than MaxEdge on either side. Formats the
// decoder does not know (e.g. HEIC) are reported as errors. Transparent
// regions come out white.
func (s *Shrinker) Shrink(data []byte, mimeType string) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", mimeType, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	w, h := fit(cfg.Width, cfg.Height, s.MaxEdge)
	if w == cfg.Width && h == cfg.Height && format == "jpeg" {
		// Already small enough and already JPEG.
		return data, "image/jpeg", nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", mimeType, err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w != b.Dx() || h != b.Dy() {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.Quality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// fit scales w x h so the longer side is at most limit, keeping aspect ratio.
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, atLeastOne(h * limit / w)
	}
	return atLeastOne(w * limit / h), limit
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
