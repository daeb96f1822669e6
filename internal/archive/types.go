// Package archive stores rendered rasters in a sqlite database keyed by the
// parameters that produced them.
package archive

import (
	"errors"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/render"
)

// ErrNotFound is returned when no render is stored under a key.
var ErrNotFound = errors.New("render not found")

// Entry is one archived raster.
type Entry struct {
	Config    render.Config
	Data      []byte // encoded image (gzip-compressed at rest)
	CreatedAt time.Time
}

// Key returns the archive key for the entry.
func (e Entry) Key() string {
	return e.Config.Key()
}

// Metadata describes the archive as a whole.
type Metadata struct {
	Name    string
	Format  string // encoding of every blob, e.g. "png"
	Version string
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)
	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	return result
}
