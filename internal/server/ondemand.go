// Package server renders noise rasters over HTTP, caching them in the archive.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/archive"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/render"
)

type OnDemandConfig struct {
	// Defaults fills in every parameter the query leaves out.
	Defaults render.Config
	// Archive caches rendered PNGs; nil renders every request.
	Archive              *archive.Store
	CacheControl         string
	Workers              int
	MaxConcurrentRenders int
	RenderTimeout        time.Duration
	MaxPixels            int
	ThumbnailSize        int
	MaxThumbnailSize     int
}

// OnDemand renders rasters for query parameters, one render per key at a time.
type OnDemand struct {
	cfg    OnDemandConfig
	logger *slog.Logger
	sem    chan struct{}
	locks  sync.Map

	activeRenders  atomic.Int32
	queuedRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	cacheHits      atomic.Int64
	currentRenders sync.Map // key -> start time
}

// RenderStatus is the JSON body of the status endpoint.
type RenderStatus struct {
	ActiveRenders  int      `json:"active_renders"`
	QueuedRenders  int      `json:"queued_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	CacheHits      int64    `json:"cache_hits"`
	CurrentRenders []string `json:"current_renders"`
	MaxConcurrent  int      `json:"max_concurrent"`
	Archive        bool     `json:"archive"`
}

func NewOnDemand(cfg OnDemandConfig, logger *slog.Logger) *OnDemand {
	if cfg.Defaults == (render.Config{}) {
		cfg.Defaults = render.DefaultConfig()
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 1
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = 4096 * 4096
	}
	if cfg.ThumbnailSize <= 0 {
		cfg.ThumbnailSize = 128
	}
	if cfg.MaxThumbnailSize <= 0 {
		cfg.MaxThumbnailSize = 1024
	}

	return &OnDemand{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentRenders),
	}
}

// Status returns a snapshot of the render counters.
func (o *OnDemand) Status() RenderStatus {
	current := []string{}
	o.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})
	sort.Strings(current)

	return RenderStatus{
		ActiveRenders:  int(o.activeRenders.Load()),
		QueuedRenders:  int(o.queuedRenders.Load()),
		TotalRendered:  o.totalRendered.Load(),
		TotalFailed:    o.totalFailed.Load(),
		CacheHits:      o.cacheHits.Load(),
		CurrentRenders: current,
		MaxConcurrent:  o.cfg.MaxConcurrentRenders,
		Archive:        o.cfg.Archive != nil,
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (o *OnDemand) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(o.Status()); err != nil {
			o.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
		}
	})
}

// NoiseHandler serves full-size rasters.
func (o *OnDemand) NoiseHandler() http.Handler {
	return http.HandlerFunc(o.serveNoise)
}

// ThumbHandler serves Lanczos-downscaled rasters.
func (o *OnDemand) ThumbHandler() http.Handler {
	return http.HandlerFunc(o.serveThumb)
}

func (o *OnDemand) serveNoise(w http.ResponseWriter, r *http.Request) {
	c, err := parseParams(r.URL.Query(), o.cfg.Defaults, o.cfg.MaxPixels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := o.renderPNG(r.Context(), c)
	if err != nil {
		o.writeRenderError(w, c, err)
		return
	}
	o.writePNG(w, data)
}

func (o *OnDemand) serveThumb(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := parseParams(q, o.cfg.Defaults, o.cfg.MaxPixels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := parseThumbSize(q, o.cfg.ThumbnailSize, o.cfg.MaxThumbnailSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := o.renderPNG(r.Context(), c)
	if err != nil {
		o.writeRenderError(w, c, err)
		return
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		o.log().Error("failed to decode render", "key", c.Key(), "error", err)
		http.Error(w, "failed to decode render", http.StatusInternalServerError)
		return
	}
	thumb, err := raster.Thumbnail(img, size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, err := raster.EncodeBytes(thumb, raster.FormatPNG)
	if err != nil {
		o.log().Error("failed to encode thumbnail", "key", c.Key(), "error", err)
		http.Error(w, "failed to encode thumbnail", http.StatusInternalServerError)
		return
	}
	o.writePNG(w, out)
}

// renderPNG returns the encoded raster for c from the archive, rendering and
// archiving it on a miss.
func (o *OnDemand) renderPNG(ctx context.Context, c render.Config) ([]byte, error) {
	key := c.Key()

	if data, ok := o.lookup(key); ok {
		return data, nil
	}

	mu := o.getLock(key)
	mu.Lock()
	defer mu.Unlock()

	// another request may have rendered it while we waited
	if data, ok := o.lookup(key); ok {
		return data, nil
	}

	o.queuedRenders.Add(1)
	select {
	case o.sem <- struct{}{}:
		o.queuedRenders.Add(-1)
		defer func() { <-o.sem }()
	case <-ctx.Done():
		o.queuedRenders.Add(-1)
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	img, err := o.renderImage(ctx, key, c)
	if err != nil {
		o.totalFailed.Add(1)
		return nil, err
	}

	data, err := raster.EncodeBytes(img, raster.FormatPNG)
	if err != nil {
		o.totalFailed.Add(1)
		return nil, err
	}
	o.totalRendered.Add(1)
	o.log().Info("rendered on-demand", "key", key, "ms", time.Since(start).Milliseconds())

	if o.cfg.Archive != nil {
		if err := o.cfg.Archive.Put(archive.Entry{Config: c, Data: data}); err != nil {
			o.log().Warn("failed to archive render", "key", key, "error", err)
		}
	}
	return data, nil
}

// renderImage runs the pass while the key is listed as an active render.
func (o *OnDemand) renderImage(ctx context.Context, key string, c render.Config) (*image.Gray, error) {
	o.activeRenders.Add(1)
	o.currentRenders.Store(key, time.Now())
	defer func() {
		o.activeRenders.Add(-1)
		o.currentRenders.Delete(key)
	}()

	return render.Image(ctx, c, render.Options{Workers: o.cfg.Workers, Logger: o.logger})
}

func (o *OnDemand) lookup(key string) ([]byte, bool) {
	if o.cfg.Archive == nil {
		return nil, false
	}
	data, err := o.cfg.Archive.Get(key)
	if err != nil {
		if !errors.Is(err, archive.ErrNotFound) {
			o.log().Warn("archive lookup failed", "key", key, "error", err)
		}
		return nil, false
	}
	o.cacheHits.Add(1)
	return data, true
}

func (o *OnDemand) writeRenderError(w http.ResponseWriter, c render.Config, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		o.log().Warn("render timed out", "key", c.Key(), "timeout", o.cfg.RenderTimeout)
		http.Error(w, fmt.Sprintf("render %s timed out", c.Key()), http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
	case errors.Is(err, render.ErrInvalidConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		o.log().Error("failed to render", "key", c.Key(), "error", err)
		http.Error(w, fmt.Sprintf("failed to render %s: %v", c.Key(), err), http.StatusInternalServerError)
	}
}

func (o *OnDemand) writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", raster.FormatPNG.ContentType())
	w.Header().Set("Cache-Control", o.cfg.CacheControl)
	if _, err := w.Write(data); err != nil {
		o.log().Error("failed to write response", "error", err)
	}
}

func (o *OnDemand) getLock(key string) *sync.Mutex {
	if v, ok := o.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	actual, _ := o.locks.LoadOrStore(key, mu)
	return actual.(*sync.Mutex)
}

func (o *OnDemand) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}
