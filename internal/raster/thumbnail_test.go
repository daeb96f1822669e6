package raster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThumbnailKeepsAspectRatio(t *testing.T) {
	tests := []struct {
		name         string
		w, h, size   int
		wantW, wantH int
	}{
		{"square", 256, 256, 64, 64, 64},
		{"landscape", 256, 128, 64, 64, 32},
		{"portrait", 100, 400, 50, 13, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newGradientSink(t, tt.w, tt.h)
			thumb, err := Thumbnail(src.Image(), tt.size)
			require.NoError(t, err)
			require.Equal(t, tt.wantW, thumb.Bounds().Dx())
			require.Equal(t, tt.wantH, thumb.Bounds().Dy())
		})
	}
}

func TestThumbnailValidation(t *testing.T) {
	_, err := Thumbnail(nil, 10)
	require.Error(t, err)

	src := newGradientSink(t, 8, 8)
	_, err = Thumbnail(src.Image(), 0)
	require.Error(t, err)
}
