package noise

import (
	"github.com/MeKo-Tech/noisefield/internal/geom"
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Sampler produces a scalar in approximately [-1, 1] for a lattice-space point.
// Samplers are safe for concurrent use once constructed.
type Sampler interface {
	Sample(p geom.Vector2) float64
}

// SimplexSampler evaluates the simplex kernel over a gradient field.
type SimplexSampler struct {
	Gradients GradientField
}

func (s SimplexSampler) Sample(p geom.Vector2) float64 {
	return Evaluate(p, s.Gradients)
}

// PerlinSampler is a single-octave classic Perlin reference, used to compare
// against the simplex kernel on the same lattice.
type PerlinSampler struct {
	p *perlin.Perlin
}

func NewPerlinSampler(seed int64) *PerlinSampler {
	// alpha and beta only matter between octaves
	return &PerlinSampler{p: perlin.NewPerlin(2.0, 2.0, 1, seed)}
}

func (s *PerlinSampler) Sample(p geom.Vector2) float64 {
	return s.p.Noise2D(p.X, p.Y)
}

// OpenSimplexSampler is a reference OpenSimplex kernel.
type OpenSimplexSampler struct {
	n opensimplex.Noise
}

func NewOpenSimplexSampler(seed int64) *OpenSimplexSampler {
	return &OpenSimplexSampler{n: opensimplex.New(seed)}
}

func (s *OpenSimplexSampler) Sample(p geom.Vector2) float64 {
	return s.n.Eval2(p.X, p.Y)
}
