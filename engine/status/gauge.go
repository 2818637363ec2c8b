package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 last-value metric that also keeps the peak seen since creation or Reset
// Zero value is ready to use
type Gauge struct {
	bits atomic.Uint64
	peak atomic.Uint64
}

// Set stores val and raises the peak if exceeded
func (g *Gauge) Set(val float64) {
	g.bits.Store(math.Float64bits(val))
	for {
		old := g.peak.Load()
		if val <= math.Float64frombits(old) {
			return
		}
		if g.peak.CompareAndSwap(old, math.Float64bits(val)) {
			return
		}
	}
}

// Get returns the last stored value
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Peak returns the largest value stored
func (g *Gauge) Peak() float64 {
	return math.Float64frombits(g.peak.Load())
}

// Reset clears value and peak
func (g *Gauge) Reset() {
	g.bits.Store(0)
	g.peak.Store(0)
}
