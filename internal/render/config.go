// Package render runs the raster pass: it maps every pixel into lattice space,
// samples the noise kernel there and writes the resulting intensity to a sink.
package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig marks configuration that can never produce a raster.
var ErrInvalidConfig = errors.New("invalid render config")

// MaxPixels bounds width*height so a raster always fits one allocation.
const MaxPixels = 1 << 30

// GradientKind selects the gradient table behind the simplex kernel.
type GradientKind string

const (
	// GradientsLattice draws one random gradient per grid cell from the seed.
	GradientsLattice GradientKind = "lattice"
	// GradientsFixed uses the eight 45 degree directions; the seed is ignored.
	GradientsFixed GradientKind = "fixed"
)

// SamplerKind selects the noise kernel.
type SamplerKind string

const (
	SamplerSimplex     SamplerKind = "simplex"
	SamplerPerlin      SamplerKind = "perlin"
	SamplerOpenSimplex SamplerKind = "opensimplex"
)

// Config describes one raster pass.
type Config struct {
	Gradients  GradientKind
	Sampler    SamplerKind
	Width      int
	Height     int
	GridWidth  int
	GridHeight int
	Seed       int64
}

// DefaultConfig is a 256x256 raster over a 16x16 lattice.
func DefaultConfig() Config {
	return Config{
		Width:      256,
		Height:     256,
		GridWidth:  16,
		GridHeight: 16,
		Seed:       1337,
		Gradients:  GradientsLattice,
		Sampler:    SamplerSimplex,
	}
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width > MaxPixels/c.Height {
		return fmt.Errorf("%w: image size %dx%d exceeds %d pixels", ErrInvalidConfig, c.Width, c.Height, MaxPixels)
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got %dx%d", ErrInvalidConfig, c.GridWidth, c.GridHeight)
	}
	if _, err := ParseGradientKind(string(c.Gradients)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseSamplerKind(string(c.Sampler)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Key identifies the raster c produces; equal keys mean byte-identical output.
// Parameters the selected kernel ignores are written as "any".
func (c Config) Key() string {
	gradients := string(c.Gradients)
	seed := fmt.Sprintf("%d", c.Seed)
	switch {
	case c.Sampler != SamplerSimplex:
		// the reference kernels carry their own gradients
		gradients = "any"
	case c.Gradients == GradientsFixed:
		seed = "any"
	}
	return fmt.Sprintf("%s-%s_w%d_h%d_gw%d_gh%d_s%s", c.Sampler, gradients, c.Width, c.Height, c.GridWidth, c.GridHeight, seed)
}

// ParseGradientKind accepts "lattice" or "fixed" (case-insensitive).
func ParseGradientKind(s string) (GradientKind, error) {
	switch GradientKind(strings.ToLower(strings.TrimSpace(s))) {
	case GradientsLattice:
		return GradientsLattice, nil
	case GradientsFixed:
		return GradientsFixed, nil
	default:
		return "", fmt.Errorf("unknown gradients %q (want lattice or fixed)", s)
	}
}

// ParseSamplerKind accepts "simplex", "perlin" or "opensimplex" (case-insensitive).
func ParseSamplerKind(s string) (SamplerKind, error) {
	switch SamplerKind(strings.ToLower(strings.TrimSpace(s))) {
	case SamplerSimplex:
		return SamplerSimplex, nil
	case SamplerPerlin:
		return SamplerPerlin, nil
	case SamplerOpenSimplex:
		return SamplerOpenSimplex, nil
	default:
		return "", fmt.Errorf("unknown sampler %q (want simplex, perlin or opensimplex)", s)
	}
}
