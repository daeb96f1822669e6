//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/render"
)

// RenderRequest is the JSON argument of noisefieldRender. Zero fields keep the defaults.
type RenderRequest struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Grid       int    `json:"grid"`
	GridWidth  int    `json:"grid_width"`
	GridHeight int    `json:"grid_height"`
	Seed       *int64 `json:"seed"`
	Gradients  string `json:"gradients"`
	Sampler    string `json:"sampler"`
}

func (r RenderRequest) config() (render.Config, error) {
	c := render.DefaultConfig()
	if r.Width != 0 {
		c.Width = r.Width
	}
	if r.Height != 0 {
		c.Height = r.Height
	}
	if r.Grid != 0 {
		c.GridWidth, c.GridHeight = r.Grid, r.Grid
	}
	if r.GridWidth != 0 {
		c.GridWidth = r.GridWidth
	}
	if r.GridHeight != 0 {
		c.GridHeight = r.GridHeight
	}
	if r.Seed != nil {
		c.Seed = *r.Seed
	}
	if r.Gradients != "" {
		g, err := render.ParseGradientKind(r.Gradients)
		if err != nil {
			return render.Config{}, err
		}
		c.Gradients = g
	}
	if r.Sampler != "" {
		s, err := render.ParseSamplerKind(r.Sampler)
		if err != nil {
			return render.Config{}, err
		}
		c.Sampler = s
	}
	return c, c.Validate()
}

func parseRequest(args []js.Value) (render.Config, error) {
	if len(args) < 1 {
		return render.Config{}, fmt.Errorf("missing arguments")
	}
	var req RenderRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return render.Config{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return req.config()
}

// renderNoise renders a raster in the browser and returns it as a PNG data URL.
// There is only one thread, so the pass runs serially.
func renderNoise(this js.Value, args []js.Value) interface{} {
	c, err := parseRequest(args)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	img, err := render.Image(context.Background(), c, render.Options{})
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	data, err := raster.EncodeBytes(img, raster.FormatPNG)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	return map[string]interface{}{
		"key":      c.Key(),
		"data_url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// noiseKey returns the archive key so the page can hit /archive/{key}.png on a
// `noisefield serve` backend instead of rendering locally.
func noiseKey(this js.Value, args []js.Value) interface{} {
	c, err := parseRequest(args)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return map[string]interface{}{"key": c.Key()}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("noisefieldRender", js.FuncOf(renderNoise))
	js.Global().Set("noisefieldKey", js.FuncOf(noiseKey))

	fmt.Println("noisefield WASM module loaded")
	<-c
}
