package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/archive"
)

// ArchiveHandler serves stored renders straight from the archive.
type ArchiveHandler struct {
	store        *archive.Store
	logger       *slog.Logger
	cacheControl string
}

// archivedRender is one row of the listing.
type archivedRender struct {
	Key        string    `json:"key"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	GridWidth  int       `json:"grid_width"`
	GridHeight int       `json:"grid_height"`
	Seed       int64     `json:"seed"`
	Gradients  string    `json:"gradients"`
	Sampler    string    `json:"sampler"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewArchiveHandler(store *archive.Store, cacheControl string, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{store: store, logger: logger, cacheControl: cacheControl}
}

// Handler serves GET /archive/ (JSON listing) and GET /archive/{key}.png.
func (h *ArchiveHandler) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := parseArchivePath(r.URL.Path)
		switch {
		case r.URL.Path == "/archive/" || r.URL.Path == "/archive":
			h.serveList(w)
		case ok:
			h.serveRender(w, key)
		default:
			http.NotFound(w, r)
		}
	})
}

func (h *ArchiveHandler) serveList(w http.ResponseWriter) {
	entries, err := h.store.List()
	if err != nil {
		h.log().Error("failed to list archive", "error", err)
		http.Error(w, "failed to list archive", http.StatusInternalServerError)
		return
	}

	out := make([]archivedRender, 0, len(entries))
	for _, e := range entries {
		c := e.Config
		out = append(out, archivedRender{
			Key:        e.Key(),
			Width:      c.Width,
			Height:     c.Height,
			GridWidth:  c.GridWidth,
			GridHeight: c.GridHeight,
			Seed:       c.Seed,
			Gradients:  string(c.Gradients),
			Sampler:    string(c.Sampler),
			CreatedAt:  e.CreatedAt.UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.log().Error("failed to encode archive listing", "error", err)
	}
}

func (h *ArchiveHandler) serveRender(w http.ResponseWriter, key string) {
	data, err := h.store.Get(key)
	if errors.Is(err, archive.ErrNotFound) {
		http.Error(w, "render not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log().Error("failed to read render", "key", key, "error", err)
		http.Error(w, "failed to read render", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		h.log().Error("failed to write response", "error", err)
	}
}

func (h *ArchiveHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseArchivePath extracts the key from /archive/{key}.png.
func parseArchivePath(requestPath string) (string, bool) {
	if !strings.HasPrefix(requestPath, "/archive/") {
		return "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return "", false
	}
	key := strings.TrimSuffix(base, ".png")
	if key == "" {
		return "", false
	}
	return key, true
}
