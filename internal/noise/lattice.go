package noise

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/noisefield/internal/geom"
)

// ErrInvalidDimensions is returned when an image or grid dimension is not positive.
var ErrInvalidDimensions = errors.New("dimensions must be positive")

// LatticeMapper converts raster pixel coordinates into lattice space.
type LatticeMapper struct {
	imageWidth  float64
	imageHeight float64
	gridWidth   float64
	gridHeight  float64
}

// NewLatticeMapper validates the dimensions up front so ToLattice never divides by zero.
func NewLatticeMapper(imageWidth, imageHeight, gridWidth, gridHeight int) (LatticeMapper, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return LatticeMapper{}, fmt.Errorf("image %dx%d: %w", imageWidth, imageHeight, ErrInvalidDimensions)
	}
	if gridWidth <= 0 || gridHeight <= 0 {
		return LatticeMapper{}, fmt.Errorf("grid %dx%d: %w", gridWidth, gridHeight, ErrInvalidDimensions)
	}

	return LatticeMapper{
		imageWidth:  float64(imageWidth),
		imageHeight: float64(imageHeight),
		gridWidth:   float64(gridWidth),
		gridHeight:  float64(gridHeight),
	}, nil
}

// ToLattice returns (px/imageWidth*gridWidth, py/imageHeight*gridHeight).
func (m LatticeMapper) ToLattice(px, py int) geom.Vector2 {
	return geom.Vector2{
		X: float64(px) / m.imageWidth * m.gridWidth,
		Y: float64(py) / m.imageHeight * m.gridHeight,
	}
}
