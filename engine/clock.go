package engine

import "time"

// FixedStep converts variable real elapsed time into a count of fixed ticks
// The remainder carries to the next frame; time elapsed while paused is dropped
type FixedStep struct {
	Interval   time.Duration
	MaxCatchUp int // Ticks per Advance cap, 0 = unbounded

	accumulated time.Duration
	paused      bool
	dropped     uint64
}

// NewFixedStep creates an accumulator for the given tick rate in Hz
func NewFixedStep(rate float64, maxCatchUp int) *FixedStep {
	if rate <= 0 {
		rate = 1
	}
	return &FixedStep{
		Interval:   time.Duration(float64(time.Second) / rate),
		MaxCatchUp: maxCatchUp,
	}
}

// Advance adds elapsed real time and returns the number of ticks now due
// Ticks beyond MaxCatchUp are discarded so a stall cannot snowball
func (f *FixedStep) Advance(elapsed time.Duration) int {
	if f.paused || elapsed <= 0 || f.Interval <= 0 {
		return 0
	}
	f.accumulated += elapsed

	n := int(f.accumulated / f.Interval)
	f.accumulated -= time.Duration(n) * f.Interval

	if f.MaxCatchUp > 0 && n > f.MaxCatchUp {
		f.dropped += uint64(n - f.MaxCatchUp)
		n = f.MaxCatchUp
	}
	return n
}

// Step returns the tick length in seconds
func (f *FixedStep) Step() float64 { return f.Interval.Seconds() }

// Alpha returns how far the pending remainder is into the next tick, in [0, 1)
func (f *FixedStep) Alpha() float64 {
	if f.Interval <= 0 {
		return 0
	}
	return float64(f.accumulated) / float64(f.Interval)
}

// Pause stops accumulation
func (f *FixedStep) Pause() { f.paused = true }

// Resume restarts accumulation without replaying paused time
func (f *FixedStep) Resume() { f.paused = false }

// Toggle flips pause state and returns the new state
func (f *FixedStep) Toggle() bool {
	f.paused = !f.paused
	return f.paused
}

// Paused returns current pause state
func (f *FixedStep) Paused() bool { return f.paused }

// Dropped returns the total of ticks discarded by the catch-up cap
func (f *FixedStep) Dropped() uint64 { return f.dropped }
