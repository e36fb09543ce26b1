package engine

import "math"

// DefaultPeriodMs is the real time, in milliseconds, per displayed tick.
const DefaultPeriodMs = 1000.0

// MinPeriodMs is the shortest accepted tick period.
const MinPeriodMs = 1.0

// Clock turns accumulated real frame time into a displayed tick counter.
// It is informational only: the economy steps once per frame regardless.
type Clock struct {
	Period      float64 // Milliseconds per tick
	Accumulated float64 // Milliseconds carried toward the next tick
	Tick        int     // Displayed time
}

// NewClock creates a clock with the given period. Non-positive periods fall
// back to DefaultPeriodMs; positive periods below MinPeriodMs are raised to it.
func NewClock(periodMs float64) *Clock {
	switch {
	case !(periodMs > 0) || math.IsInf(periodMs, 0):
		periodMs = DefaultPeriodMs
	case periodMs < MinPeriodMs:
		periodMs = MinPeriodMs
	}
	return &Clock{Period: periodMs}
}

// Advance adds elapsed frame time and returns how many ticks were crossed.
// A long frame can cross several periods at once.
func (c *Clock) Advance(elapsedMs float64) int {
	if !(elapsedMs > 0) || math.IsInf(elapsedMs, 0) {
		return 0
	}
	c.Accumulated += elapsedMs
	if c.Accumulated < c.Period {
		return 0
	}
	n := math.Floor(c.Accumulated / c.Period)
	c.Accumulated -= n * c.Period
	if c.Accumulated < 0 {
		c.Accumulated = 0
	}
	// Tick saturates rather than wrapping.
	headroom := math.MaxInt - c.Tick
	crossed := headroom
	if n < float64(headroom) {
		crossed = int(n)
	}
	c.Tick += crossed
	return crossed
}

// Reset zeroes the accumulator and the tick counter.
func (c *Clock) Reset() {
	c.Accumulated = 0
	c.Tick = 0
}
