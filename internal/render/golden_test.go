package render

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderGolden(t *testing.T) {
	// Pins the kernel constants, the lattice lookup and the seeded gradient
	// sequence against rasters committed to the repo.
	//
	// Update goldens:
	//   UPDATE_GOLDEN=1 go test ./internal/render -run TestRenderGolden
	//
	// On mismatch the rendered raster is written under:
	//   testdata/output/render/

	// go test runs in the package folder (internal/render); goldens live at the repo root.
	goldenDir := filepath.Join("..", "..", "testdata", "golden", "render")
	debugDir := filepath.Join("..", "..", "testdata", "output", "render")

	update := os.Getenv("UPDATE_GOLDEN") == "1"

	fixed := DefaultConfig()
	fixed.Gradients = GradientsFixed

	for _, c := range []Config{DefaultConfig(), fixed} {
		t.Run(c.Key(), func(t *testing.T) {
			got, err := Image(context.Background(), c, Options{Workers: 4})
			if err != nil {
				t.Fatalf("Image failed: %v", err)
			}

			path := filepath.Join(goldenDir, c.Key()+".png")
			if update {
				if err := os.MkdirAll(goldenDir, 0o755); err != nil {
					t.Fatalf("failed to create golden dir: %v", err)
				}
				if err := writePNG(path, got); err != nil {
					t.Fatalf("failed to write golden %s: %v", path, err)
				}
				return
			}

			ok, err := fileExists(path)
			if err != nil {
				t.Fatalf("stat golden %s: %v", path, err)
			}
			if !ok {
				t.Fatalf("missing golden %s; run: UPDATE_GOLDEN=1 go test ./internal/render -run TestRenderGolden", path)
			}

			want, err := readGray(path)
			if err != nil {
				t.Fatalf("failed to read golden %s: %v", path, err)
			}

			// Compare decoded pixels, not raw bytes (PNG encoding may vary).
			if want.Bounds() != got.Bounds() {
				t.Fatalf("bounds mismatch: got %v want %v", got.Bounds(), want.Bounds())
			}
			diff, first := 0, -1
			for i := range got.Pix {
				if got.Pix[i] != want.Pix[i] {
					if first < 0 {
						first = i
					}
					diff++
				}
			}
			if diff == 0 {
				return
			}

			if err := os.MkdirAll(debugDir, 0o755); err == nil {
				_ = writePNG(filepath.Join(debugDir, c.Key()+".png"), got)
			}
			w := got.Bounds().Dx()
			t.Fatalf("%d pixels differ from golden; first at (%d,%d): got %d want %d",
				diff, first%w, first/w, got.Pix[first], want.Pix[first])
		})
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// readGray decodes a PNG into a tightly packed greyscale raster.
func readGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray); ok && g.Stride == g.Bounds().Dx() {
		return g, nil
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return g, nil
}
