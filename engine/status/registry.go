package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Simulation metric keys written by engine.Simulation each tick
const (
	KeyTicks       = "sim.ticks"
	KeyCollisions  = "sim.collisions"
	KeyWallBounces = "sim.wall_bounces"
	KeyCandidates  = "sim.candidates"
	KeyNodes       = "sim.nodes"
	KeyTickMs      = "sim.tick_ms"
)

// Registry is the central metrics facade
// Producers cache pointers once; the tick loop writes directly to atomics
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[Gauge]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[Gauge](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count()
}

// String renders all metrics as sorted key=value pairs, ints first, gauges with their peak
func (r *Registry) String() string {
	var sb strings.Builder
	r.Ints.Range(func(key string, v *atomic.Int64) {
		fmt.Fprintf(&sb, "%s=%d ", key, v.Load())
	})
	r.Floats.Range(func(key string, v *Gauge) {
		fmt.Fprintf(&sb, "%s=%.3f(peak %.3f) ", key, v.Get(), v.Peak())
	})
	return strings.TrimSpace(sb.String())
}
