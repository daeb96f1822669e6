// Package noise implements the 2D simplex gradient-noise kernel and the
// pieces around it: gradient tables, raster-to-lattice mapping and the
// greyscale intensity mapping.
package noise

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/noisefield/internal/geom"
)

// GradientField maps a lattice vertex to a unit-length gradient.
// Implementations are read-only after construction and safe for concurrent use.
type GradientField interface {
	Lookup(vx, vy int) geom.Vector2
}

// RandomSource yields uniformly distributed values in [0, 1).
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

var fixedDirections = func() [8]geom.Vector2 {
	var dirs [8]geom.Vector2
	for i := range dirs {
		dirs[i] = geom.FromAngle(float64(i) * math.Pi / 4)
	}
	return dirs
}()

// FixedField selects one of 8 directions at 45 degree steps by (vx+vy) mod 8.
type FixedField struct{}

func (FixedField) Lookup(vx, vy int) geom.Vector2 {
	return fixedDirections[mod(vx+vy, len(fixedDirections))]
}

// LatticeField holds one randomly oriented gradient per lattice cell.
type LatticeField struct {
	width     int
	height    int
	gradients []geom.Vector2
}

// GenerateLattice draws width*height gradient angles from rnd, each uniform over [0, 2π).
func GenerateLattice(width, height int, rnd RandomSource) (*LatticeField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gradient grid %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if rnd == nil {
		return nil, fmt.Errorf("random source is required")
	}

	gradients := make([]geom.Vector2, width*height)
	for i := range gradients {
		gradients[i] = geom.FromAngle(rnd.Float64() * 2 * math.Pi)
	}

	return &LatticeField{width: width, height: height, gradients: gradients}, nil
}

// Lookup wraps vertex coordinates so vertices just outside the grid
// (including negative ones) still resolve.
func (f *LatticeField) Lookup(vx, vy int) geom.Vector2 {
	idx := mod(mod(vx, f.width)+mod(vy, f.height)*f.height, len(f.gradients))
	return f.gradients[idx]
}

// Size returns the grid dimensions the field was generated for.
func (f *LatticeField) Size() (width, height int) {
	return f.width, f.height
}

// mod is the mathematical modulo; the result is always in [0, b).
func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
