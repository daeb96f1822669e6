package render

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/noisefield/internal/noise"
)

// Stats summarises sampled kernel output.
type Stats struct {
	Samples int
	Min     float64
	Max     float64
	Mean    float64
	// Clipped counts samples outside [-1, 1]; ToIntensity clamps these.
	Clipped int
}

// Survey samples the configured kernel on an n x n grid spanning the whole
// lattice, with n*n >= samples. The image size in c is ignored.
func Survey(c Config, samples int) (Stats, error) {
	if samples <= 0 {
		return Stats{}, fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfig, samples)
	}
	c.Width, c.Height = 1, 1
	if err := c.Validate(); err != nil {
		return Stats{}, err
	}

	n := int(math.Ceil(math.Sqrt(float64(samples))))
	mapper, err := noise.NewLatticeMapper(n, n, c.GridWidth, c.GridHeight)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sampler, err := NewSampler(c)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := sampler.Sample(mapper.ToLattice(x, y))
			st.Min = math.Min(st.Min, v)
			st.Max = math.Max(st.Max, v)
			if v < -1 || v > 1 {
				st.Clipped++
			}
			sum += v
			st.Samples++
		}
	}
	st.Mean = sum / float64(st.Samples)
	return st, nil
}
