package render

import (
	"fmt"
	"math/rand"

	"github.com/MeKo-Tech/noisefield/internal/noise"
)

// NewGradients builds the gradient field for c. Lattice fields are drawn from a
// math/rand source seeded with c.Seed, so equal seeds give equal fields.
func NewGradients(c Config) (noise.GradientField, error) {
	switch c.Gradients {
	case GradientsFixed:
		return noise.FixedField{}, nil
	case GradientsLattice:
		field, err := noise.GenerateLattice(c.GridWidth, c.GridHeight, rand.New(rand.NewSource(c.Seed)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return field, nil
	default:
		return nil, fmt.Errorf("%w: unknown gradients %q", ErrInvalidConfig, c.Gradients)
	}
}

// NewSampler returns the kernel selected by c, ready for concurrent use.
func NewSampler(c Config) (noise.Sampler, error) {
	switch c.Sampler {
	case SamplerSimplex:
		gradients, err := NewGradients(c)
		if err != nil {
			return nil, err
		}
		return noise.SimplexSampler{Gradients: gradients}, nil
	case SamplerPerlin:
		return noise.NewPerlinSampler(c.Seed), nil
	case SamplerOpenSimplex:
		return noise.NewOpenSimplexSampler(c.Seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown sampler %q", ErrInvalidConfig, c.Sampler)
	}
}
