package render

import (
	"log/slog"

	"github.com/MeKo-Tech/noisefield/internal/geom"
)

// Tracer observes every evaluated pixel. Calls may arrive concurrently from
// several workers.
type Tracer interface {
	Trace(px, py int, p geom.Vector2, value float64, intensity uint8)
}

// SlogTracer logs pixels at Debug level. With Every > 1 only pixels whose x and
// y are both multiples of Every are logged.
type SlogTracer struct {
	Logger *slog.Logger
	Every  int
}

func (t SlogTracer) Trace(px, py int, p geom.Vector2, value float64, intensity uint8) {
	if t.Every > 1 && (px%t.Every != 0 || py%t.Every != 0) {
		return
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("sample",
		"px", px,
		"py", py,
		"lx", p.X,
		"ly", p.Y,
		"value", value,
		"intensity", intensity,
	)
}
