// Package worker provides a parallel worker pool for row bands of a raster pass.
package worker

import (
	"context"
	"sync"
	"time"
)

// BandRenderer renders the rows of one band.
// This matches the signature of render.bandPass.RenderBand.
type BandRenderer interface {
	RenderBand(ctx context.Context, band Band) error
}

// Band is the half-open row range [Y0, Y1).
type Band struct {
	Y0 int
	Y1 int
}

// Rows returns the number of rows covered.
func (b Band) Rows() int { return b.Y1 - b.Y0 }

// Split cuts height rows into bands of at most rowsPerBand rows.
func Split(height, rowsPerBand int) []Band {
	if height <= 0 {
		return nil
	}
	if rowsPerBand <= 0 {
		rowsPerBand = 1
	}

	bands := make([]Band, 0, (height+rowsPerBand-1)/rowsPerBand)
	for y := 0; y < height; y += rowsPerBand {
		end := y + rowsPerBand
		if end > height {
			end = height
		}
		bands = append(bands, Band{Y0: y, Y1: end})
	}
	return bands
}

// Result represents the outcome of rendering a band.
type Result struct {
	Band    Band
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each band completes with that band's result
// and the number of bands finished so far out of total.
type ProgressFunc func(res Result, completed, total int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Renderer   BandRenderer
	OnProgress ProgressFunc
}

// Pool manages parallel band rendering.
type Pool struct {
	workers    int
	renderer   BandRenderer
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		renderer:   cfg.Renderer,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all bands and returns one result per band.
// Bands are processed in parallel by the configured number of workers.
// The function blocks until all bands complete or the context is cancelled;
// bands not started before cancellation come back with ctx.Err().
func (p *Pool) Run(ctx context.Context, bands []Band) []Result {
	if len(bands) == 0 {
		return nil
	}

	bandCh := make(chan Band, len(bands))
	resultCh := make(chan Result, len(bands))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, bandCh, resultCh)
		}()
	}

	// The channel is buffered for every band, so feeding never blocks.
	for _, band := range bands {
		bandCh <- band
	}
	close(bandCh)

	results := make([]Result, 0, len(bands))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)
			if p.onProgress != nil {
				p.onProgress(result, len(results), len(bands))
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker drains bands and reports a result for each one.
func (p *Pool) worker(ctx context.Context, bands <-chan Band, results chan<- Result) {
	for band := range bands {
		select {
		case <-ctx.Done():
			results <- Result{Band: band, Err: ctx.Err()}
			continue
		default:
		}

		start := time.Now()
		err := p.renderer.RenderBand(ctx, band)

		results <- Result{
			Band:    band,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
