package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProgress_ObserveCountsRows(t *testing.T) {
	p := NewProgress(100, 10, false)

	p.Observe(Result{Band: Band{Y0: 0, Y1: 4}, Elapsed: 2 * time.Millisecond}, 1, 3)
	p.Observe(Result{Band: Band{Y0: 4, Y1: 8}, Err: errors.New("boom")}, 2, 3)

	if p.rowsDone != 4 {
		t.Errorf("Expected rowsDone=4, got %d", p.rowsDone)
	}
	if p.rowsFailed != 4 {
		t.Errorf("Expected rowsFailed=4, got %d", p.rowsFailed)
	}
	if p.bandsDone != 2 || p.bandsTotal != 3 {
		t.Errorf("Expected 2/3 bands, got %d/%d", p.bandsDone, p.bandsTotal)
	}
	if p.busy != 2*time.Millisecond {
		t.Errorf("Expected busy=2ms, got %s", p.busy)
	}
}

func TestProgress_Print(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(1000, 10, true)
	p.out = &buf
	p.started = time.Now().Add(-10 * time.Second)

	p.Observe(Result{Band: Band{Y0: 0, Y1: 5}}, 1, 2)

	output := buf.String()

	if !strings.HasPrefix(output, "\r[") {
		t.Errorf("Expected line to redraw in place, got: %q", output)
	}
	if !strings.Contains(output, strings.Repeat("█", 15)+strings.Repeat("░", 15)) {
		t.Errorf("Expected half-filled bar, got: %s", output)
	}
	if !strings.Contains(output, "5/10 rows") {
		t.Errorf("Expected '5/10 rows' in output, got: %s", output)
	}
	// 5000 px over ~10s
	if !strings.Contains(output, "500 px/s") {
		t.Errorf("Expected '500 px/s' in output, got: %s", output)
	}
	if !strings.Contains(output, "ETA:") {
		t.Errorf("Expected 'ETA:' in output, got: %s", output)
	}
}

func TestProgress_LineReportsFailedRows(t *testing.T) {
	p := NewProgress(8, 6, false)
	p.Observe(Result{Band: Band{Y0: 0, Y1: 3}, Err: errors.New("cancelled")}, 1, 2)

	line := p.Line()
	if !strings.Contains(line, "3/6 rows (3 failed)") {
		t.Errorf("Expected failed rows in line, got: %s", line)
	}
	if strings.Contains(line, "ETA:") {
		t.Errorf("Expected no ETA before any row succeeds, got: %s", line)
	}
}

func TestProgress_ZeroHeight(t *testing.T) {
	p := NewProgress(0, 0, false)

	line := p.Line()
	if !strings.Contains(line, "0/0 rows") || !strings.Contains(line, "Done in") {
		t.Errorf("Expected an empty finished pass, got: %s", line)
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(16, 3, true)
	p.out = &buf

	p.Observe(Result{Band: Band{Y0: 0, Y1: 3}}, 1, 1)
	buf.Reset()

	p.Done()

	output := buf.String()
	if !strings.Contains(output, "Done in") {
		t.Errorf("Expected 'Done in' in output, got: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Expected output to end with newline")
	}
}

func TestProgress_Summary(t *testing.T) {
	p := NewProgress(256, 256, false)

	p.Observe(Result{Band: Band{Y0: 0, Y1: 128}, Elapsed: 40 * time.Millisecond}, 1, 2)
	p.Observe(Result{Band: Band{Y0: 128, Y1: 256}, Elapsed: 60 * time.Millisecond}, 2, 2)

	summary := p.Summary()

	if !strings.Contains(summary, "256/256 rows, 65536 px in 2 bands (0 rows failed)") {
		t.Errorf("Expected row and pixel totals in summary, got: %s", summary)
	}
	if !strings.Contains(summary, "worker time 100ms") {
		t.Errorf("Expected summed band time in summary, got: %s", summary)
	}
}

func TestProgress_Disabled(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(10, 10, false)
	p.out = &buf

	p.Observe(Result{Band: Band{Y0: 0, Y1: 5}}, 1, 2)

	if buf.Len() != 0 {
		t.Errorf("Expected no output when disabled, got: %s", buf.String())
	}
}

func TestProgress_CallbackFromPool(t *testing.T) {
	p := NewProgress(4, 7, false)

	pool := New(Config{
		Workers:    3,
		Renderer:   &mockRenderer{},
		OnProgress: p.Callback(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool.Run(ctx, Split(7, 2))

	if p.rowsDone != 7 {
		t.Errorf("Expected rowsDone=7, got %d", p.rowsDone)
	}
	if p.bandsDone != 4 || p.bandsTotal != 4 {
		t.Errorf("Expected 4/4 bands, got %d/%d", p.bandsDone, p.bandsTotal)
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		expected string
		pixels   int
		elapsed  time.Duration
	}{
		{expected: "0 px/s", pixels: 0, elapsed: time.Second},
		{expected: "0 px/s", pixels: 10, elapsed: 0},
		{expected: "750 px/s", pixels: 750, elapsed: time.Second},
		{expected: "65.5 kpx/s", pixels: 65536, elapsed: time.Second},
		{expected: "131.1 Mpx/s", pixels: 65536, elapsed: 500 * time.Microsecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatRate(tt.pixels, tt.elapsed); got != tt.expected {
				t.Errorf("formatRate(%d, %v) = %s, want %s", tt.pixels, tt.elapsed, got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		expected string
		duration time.Duration
	}{
		{duration: 42 * time.Millisecond, expected: "42ms"},
		{duration: 1500 * time.Millisecond, expected: "1.5s"},
		{duration: 90 * time.Second, expected: "1m30s"},
		{duration: 5 * time.Minute, expected: "5m00s"},
		{duration: 65 * time.Minute, expected: "1h05m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("formatDuration(%v) = %s, want %s", tt.duration, result, tt.expected)
			}
		})
	}
}
