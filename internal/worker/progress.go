package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress meters a raster pass by rows and pixels as bands complete.
type Progress struct {
	started time.Time
	out     io.Writer

	mu         sync.Mutex
	rowWidth   int
	height     int
	rowsDone   int
	rowsFailed int
	bandsDone  int
	bandsTotal int
	busy       time.Duration // summed render time of finished bands

	enabled bool
}

// NewProgress meters a width x height raster. The status line is only drawn when enabled.
func NewProgress(width, height int, enabled bool) *Progress {
	return &Progress{
		started:  time.Now(),
		out:      os.Stderr,
		rowWidth: width,
		height:   height,
		enabled:  enabled,
	}
}

// Observe records one finished band.
func (p *Progress) Observe(res Result, completed, total int) {
	p.mu.Lock()
	p.bandsDone = completed
	p.bandsTotal = total
	p.busy += res.Elapsed
	if res.Err != nil {
		p.rowsFailed += res.Band.Rows()
	} else {
		p.rowsDone += res.Band.Rows()
	}
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback adapts Observe for Config.OnProgress.
func (p *Progress) Callback() ProgressFunc {
	return p.Observe
}

// Line renders the current status without the leading carriage return.
func (p *Progress) Line() string {
	p.mu.Lock()
	rows, failed, height := p.rowsDone, p.rowsFailed, p.height
	pixels := rows * p.rowWidth
	p.mu.Unlock()

	elapsed := time.Since(p.started)
	finished := rows + failed

	filled := 0
	if height > 0 {
		filled = finished * barWidth / height
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %d/%d rows", bar, finished, height)
	if failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", failed)
	}
	fmt.Fprintf(&b, " - %s", formatRate(pixels, elapsed))

	switch {
	case finished >= height:
		fmt.Fprintf(&b, " - Done in %s", formatDuration(elapsed))
	case rows > 0:
		left := time.Duration(float64(elapsed) * float64(height-finished) / float64(finished))
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(left))
	}
	return b.String()
}

// Print redraws the status line in place.
func (p *Progress) Print() {
	fmt.Fprintf(p.out, "\r%s    ", p.Line())
}

// Done draws the final line and moves to the next one.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.out)
	}
}

// Summary describes the whole pass in one line suitable for a log message.
// Worker time is the summed band render time; it exceeds wall time when bands ran in parallel.
func (p *Progress) Summary() string {
	p.mu.Lock()
	rows, failed, height := p.rowsDone, p.rowsFailed, p.height
	pixels := rows * p.rowWidth
	bands, busy := p.bandsDone, p.busy
	p.mu.Unlock()

	elapsed := time.Since(p.started)
	return fmt.Sprintf("Rendered %d/%d rows, %d px in %d bands (%d rows failed) in %s at %s, worker time %s",
		rows, height, pixels, bands, failed, formatDuration(elapsed), formatRate(pixels, elapsed), formatDuration(busy))
}

// formatRate scales a pixel throughput to px/s, kpx/s or Mpx/s.
func formatRate(pixels int, elapsed time.Duration) string {
	if pixels <= 0 || elapsed <= 0 {
		return "0 px/s"
	}
	rate := float64(pixels) / elapsed.Seconds()
	switch {
	case rate >= 1e6:
		return fmt.Sprintf("%.1f Mpx/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.1f kpx/s", rate/1e3)
	default:
		return fmt.Sprintf("%.0f px/s", rate)
	}
}

// formatDuration keeps sub-second passes readable; most rasters finish in milliseconds.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
