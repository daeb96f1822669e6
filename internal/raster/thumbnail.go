package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"
)

// Thumbnail downsamples img so its longer side is size pixels, preserving aspect ratio.
func Thumbnail(img image.Image, size int) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("thumbnail source is nil")
	}
	if size <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %d", size)
	}

	b := img.Bounds()
	w, h := size, 0
	if b.Dy() > b.Dx() {
		w, h = 0, size
	}

	// gift derives the zero dimension from the aspect ratio
	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	dst := image.NewGray(g.Bounds(b))
	g.Draw(dst, img)
	return dst, nil
}
