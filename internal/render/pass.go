package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/worker"
)

// DefaultRowsPerBand is the band height handed to each worker.
const DefaultRowsPerBand = 16

// Options tunes how a pass runs; none of it changes the output bytes.
type Options struct {
	Tracer      Tracer
	OnProgress  worker.ProgressFunc
	Logger      *slog.Logger
	Workers     int // <= 1 renders on the calling goroutine
	RowsPerBand int
}

// Render writes every pixel of sink exactly once.
// The sink must match the configured size.
func Render(ctx context.Context, c Config, sink raster.Sink, opts Options) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if sink == nil {
		return fmt.Errorf("%w: sink is nil", ErrInvalidConfig)
	}
	if w, h := sink.Size(); w != c.Width || h != c.Height {
		return fmt.Errorf("%w: sink is %dx%d, config wants %dx%d", ErrInvalidConfig, w, h, c.Width, c.Height)
	}

	mapper, err := noise.NewLatticeMapper(c.Width, c.Height, c.GridWidth, c.GridHeight)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	sampler, err := NewSampler(c)
	if err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pass := &bandPass{
		mapper:  mapper,
		sampler: sampler,
		sink:    sink,
		tracer:  opts.Tracer,
		width:   c.Width,
	}

	rowsPerBand := opts.RowsPerBand
	if rowsPerBand <= 0 {
		rowsPerBand = DefaultRowsPerBand
	}
	bands := worker.Split(c.Height, rowsPerBand)

	start := time.Now()
	if opts.Workers <= 1 {
		for i, band := range bands {
			bandStart := time.Now()
			if err := pass.RenderBand(ctx, band); err != nil {
				return fmt.Errorf("failed to render rows %d-%d: %w", band.Y0, band.Y1, err)
			}
			if opts.OnProgress != nil {
				opts.OnProgress(worker.Result{Band: band, Elapsed: time.Since(bandStart)}, i+1, len(bands))
			}
		}
	} else {
		pool := worker.New(worker.Config{
			Workers:    opts.Workers,
			Renderer:   pass,
			OnProgress: opts.OnProgress,
		})
		for _, res := range pool.Run(ctx, bands) {
			if res.Err != nil {
				return fmt.Errorf("failed to render rows %d-%d: %w", res.Band.Y0, res.Band.Y1, res.Err)
			}
		}
	}

	logger.Debug("raster pass complete",
		"key", c.Key(),
		"bands", len(bands),
		"workers", opts.Workers,
		"ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Image renders c into a fresh greyscale image.
func Image(ctx context.Context, c Config, opts Options) (*image.Gray, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sink, err := raster.NewGraySink(c.Width, c.Height)
	if err != nil {
		return nil, err
	}
	if err := Render(ctx, c, sink, opts); err != nil {
		return nil, err
	}
	return sink.Image(), nil
}

// bandPass renders whole rows. It shares only read-only state between workers.
type bandPass struct {
	mapper  noise.LatticeMapper
	sampler noise.Sampler
	sink    raster.Sink
	tracer  Tracer
	width   int
}

func (b *bandPass) RenderBand(ctx context.Context, band worker.Band) error {
	for y := band.Y0; y < band.Y1; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < b.width; x++ {
			p := b.mapper.ToLattice(x, y)
			v := b.sampler.Sample(p)
			intensity := noise.ToIntensity(v)
			b.sink.SetPixel(x, y, intensity)
			if b.tracer != nil {
				b.tracer.Trace(x, y, p, v, intensity)
			}
		}
	}
	return nil
}
