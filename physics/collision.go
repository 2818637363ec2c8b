package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/vmath"
)

// Overlapping is the narrow-phase test: both bodies collide and their circles intersect
// Touching circles do not overlap
func Overlapping(a, b *core.Body) bool {
	if !a.Collidable() || !b.Collidable() {
		return false
	}
	sum := a.Radius + b.Radius
	return vmath.DistanceSq(a.Position, b.Position) < sum*sum
}

// Resolve redirects both velocities along the contact normal keeping each body's own speed
// A side already resolved this tick keeps its velocity; both sides are marked resolved
// Returns false without change when both sides were already resolved
//
// The response is not momentum conserving: it swaps direction, not energy
func Resolve(a, b *core.Body) bool {
	if a.Resolved && b.Resolved {
		return false
	}

	// Coincident centers have no normal; +X for a keeps the outcome deterministic
	n := vmath.UnitOr(r2.Sub(a.Position, b.Position), vmath.AxisX)

	if !a.Resolved {
		a.Velocity = vmath.WithSpeed(n, r2.Norm(a.Velocity))
	}
	if !b.Resolved {
		b.Velocity = vmath.WithSpeed(r2.Scale(-1, n), r2.Norm(b.Velocity))
	}

	a.Resolved = true
	b.Resolved = true
	return true
}

// Collide runs the narrow phase and resolves on overlap
func Collide(a, b *core.Body) bool {
	if a == b || !Overlapping(a, b) {
		return false
	}
	return Resolve(a, b)
}
