// Package raster holds the greyscale raster sink the noise pass writes into,
// plus encoding and thumbnail helpers.
package raster

import (
	"fmt"
	"image"
	"os"
)

// Sink receives one intensity per pixel.
// Writes to distinct coordinates must be safe to issue concurrently.
type Sink interface {
	SetPixel(x, y int, v uint8)
	Size() (width, height int)
}

// GraySink is a Sink backed by an in-memory *image.Gray.
type GraySink struct {
	img *image.Gray
}

// NewGraySink allocates a width x height raster initialised to black.
func NewGraySink(width, height int) (*GraySink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster size must be positive, got %dx%d", width, height)
	}
	return &GraySink{img: image.NewGray(image.Rect(0, 0, width, height))}, nil
}

// SetPixel writes straight into the pixel buffer; each (x, y) owns its own byte.
func (s *GraySink) SetPixel(x, y int, v uint8) {
	s.img.Pix[s.img.PixOffset(x, y)] = v
}

func (s *GraySink) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the underlying raster.
func (s *GraySink) Image() *image.Gray {
	return s.img
}

// Save encodes the raster to path, picking the format from the file extension.
func (s *GraySink) Save(path string) error {
	return WriteFile(path, s.img)
}

// WriteFile encodes img to path using the format implied by its extension.
func WriteFile(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create raster %s: %w", path, err)
	}

	if err := Encode(file, img, format); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode raster %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close raster %s: %w", path, err)
	}
	return nil
}
