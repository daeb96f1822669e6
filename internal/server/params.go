package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/MeKo-Tech/noisefield/internal/render"
)

// errBadRequest marks query parameters the handlers answer with 400.
var errBadRequest = errors.New("bad request")

// parseParams overlays the query on top of defaults. "grid" sets both lattice
// dimensions; grid_width and grid_height override it individually.
func parseParams(q url.Values, defaults render.Config, maxPixels int) (render.Config, error) {
	c := defaults

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &c.Width},
		{"height", &c.Height},
		{"grid", nil},
		{"grid_width", &c.GridWidth},
		{"grid_height", &c.GridHeight},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return render.Config{}, fmt.Errorf("%w: invalid %s %q", errBadRequest, p.name, raw)
		}
		if p.dst == nil {
			c.GridWidth, c.GridHeight = v, v
			continue
		}
		*p.dst = v
	}

	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return render.Config{}, fmt.Errorf("%w: invalid seed %q", errBadRequest, raw)
		}
		c.Seed = seed
	}

	if raw := q.Get("gradients"); raw != "" {
		g, err := render.ParseGradientKind(raw)
		if err != nil {
			return render.Config{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		c.Gradients = g
	}
	if raw := q.Get("sampler"); raw != "" {
		s, err := render.ParseSamplerKind(raw)
		if err != nil {
			return render.Config{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		c.Sampler = s
	}

	if err := c.Validate(); err != nil {
		return render.Config{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if maxPixels > 0 && c.Width > maxPixels/c.Height {
		return render.Config{}, fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", errBadRequest, c.Width, c.Height, maxPixels)
	}
	return c, nil
}

// parseThumbSize reads the "size" parameter, falling back to def.
func parseThumbSize(q url.Values, def, max int) (int, error) {
	raw := q.Get("size")
	if raw == "" {
		return def, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 || size > max {
		return 0, fmt.Errorf("%w: size must be between 1 and %d, got %q", errBadRequest, max, raw)
	}
	return size, nil
}
