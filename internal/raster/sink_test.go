package raster

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func newGradientSink(t *testing.T, w, h int) *GraySink {
	t.Helper()
	s, err := NewGraySink(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.SetPixel(x, y, uint8((x*7+y*13)%256))
		}
	}
	return s
}

func TestGraySinkSetPixel(t *testing.T) {
	s, err := NewGraySink(4, 3)
	require.NoError(t, err)

	w, h := s.Size()
	require.Equal(t, 4, w)
	require.Equal(t, 3, h)

	s.SetPixel(3, 2, 200)
	s.SetPixel(0, 1, 17)
	require.Equal(t, uint8(200), s.Image().GrayAt(3, 2).Y)
	require.Equal(t, uint8(17), s.Image().GrayAt(0, 1).Y)
	require.Equal(t, uint8(0), s.Image().GrayAt(1, 1).Y)
}

func TestNewGraySinkRejectsEmpty(t *testing.T) {
	_, err := NewGraySink(0, 10)
	require.Error(t, err)
	_, err = NewGraySink(10, -1)
	require.Error(t, err)
}

func TestGraySinkSaveFormats(t *testing.T) {
	s := newGradientSink(t, 32, 16)
	dir := t.TempDir()

	decoders := map[string]func(*os.File) (image.Image, error){
		"noise.png":  func(f *os.File) (image.Image, error) { return png.Decode(f) },
		"noise.bmp":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
		"noise.tiff": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
		"NOISE.TIF":  func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
	}

	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, s.Save(path))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			img, err := decode(f)
			require.NoError(t, err)
			require.Equal(t, s.Image().Bounds(), img.Bounds())

			for y := 0; y < 16; y++ {
				for x := 0; x < 32; x++ {
					got := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
					require.Equal(t, s.Image().GrayAt(x, y).Y, got, "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestSaveUnknownExtension(t *testing.T) {
	s := newGradientSink(t, 4, 4)
	path := filepath.Join(t.TempDir(), "noise.jpg")

	require.Error(t, s.Save(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing should be written for an unknown format")
}

func TestSaveSurfacesFilesystemErrors(t *testing.T) {
	s := newGradientSink(t, 4, 4)
	err := s.Save(filepath.Join(t.TempDir(), "missing", "noise.png"))
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"png": FormatPNG, "BMP": FormatBMP, "tif": FormatTIFF, "tiff": FormatTIFF} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("gif")
	require.Error(t, err)

	require.Equal(t, "image/png", FormatPNG.ContentType())
	require.Equal(t, "image/bmp", FormatBMP.ContentType())
}
