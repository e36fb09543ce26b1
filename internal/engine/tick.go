// Package engine provides the frame-driven game loop and the state machine
// that reconciles production and consumption against the market each frame.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval paces the loop at roughly 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// Loop calls Frame once per interval until Frame asks to quit, Stop is
// called, or the context ends. A frame always runs to completion; stop
// requests are seen between frames.
type Loop struct {
	Interval time.Duration

	// Frame runs one frame with the real milliseconds elapsed since the
	// previous one and reports whether the host should quit.
	Frame func(elapsedMs float64) (quit bool)

	running atomic.Bool
	frames  atomic.Uint64
}

// NewLoop creates a loop with the given frame callback.
func NewLoop(interval time.Duration, frame func(elapsedMs float64) bool) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{Interval: interval, Frame: frame}
}

// Run drives frames. Blocks until the loop stops.
func (l *Loop) Run(ctx context.Context) {
	l.running.Store(true)
	defer l.running.Store(false)
	slog.Info("frame loop started", "interval", l.Interval)

	last := time.Now()
	for l.running.Load() {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		elapsed := start.Sub(last)
		last = start

		l.frames.Add(1)
		if l.Frame(float64(elapsed) / float64(time.Millisecond)) {
			break
		}

		// Sleep for the remainder of the frame.
		if spent := time.Since(start); spent < l.Interval {
			select {
			case <-ctx.Done():
			case <-time.After(l.Interval - spent):
			}
		}
	}

	slog.Info("frame loop stopped", "frames", l.frames.Load())
}

// Stop ends the loop after the current frame.
func (l *Loop) Stop() {
	l.running.Store(false)
}

// Running reports whether Run is in progress.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Frames returns how many frames have run.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}
