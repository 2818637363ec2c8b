package physics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/vmath"
)

// Step advances one body by dt inside a world of half extents half centered on the origin
// Returns true when a fresh wall reflection occurred this tick
//
// Boundary policy is two-phase: a body crossing a wall has that velocity component
// negated and EscapingWall set while the overshooting position is still committed;
// on following ticks the escape pass forces any outward component inward until
// both axes are clear, and only then resumes normal reflection
func Step(b *core.Body, dt float64, half r2.Vec) bool {
	b.Resolved = false

	next := vmath.Integrate(b.Position, b.Velocity, dt)
	reflected := false

	if b.EscapingWall {
		doneX := escapeAxis(&b.Velocity.X, next.X, half.X)
		doneY := escapeAxis(&b.Velocity.Y, next.Y, half.Y)
		if doneX && doneY {
			b.EscapingWall = false
		}
	} else {
		if next.X > half.X || next.X < -half.X {
			b.Velocity.X = -b.Velocity.X
			reflected = true
		}
		if next.Y > half.Y || next.Y < -half.Y {
			b.Velocity.Y = -b.Velocity.Y
			reflected = true
		}
		if reflected {
			b.EscapingWall = true
		}
	}

	b.SetPosition(next)
	return reflected
}

// escapeAxis corrects one velocity component of an escaping body
// Returns true when the axis is clear: inside bounds or already moving inward
func escapeAxis(vel *float64, next, half float64) bool {
	switch {
	case next > half && *vel > 0:
		*vel = vmath.Inward(*vel, 1)
		return false
	case next < -half && *vel < 0:
		*vel = vmath.Inward(*vel, -1)
		return false
	}
	return true
}

// Integrate advances the presentation position only
func Integrate(b *core.Body, dt float64) {
	b.DrawPosition = vmath.Integrate(b.DrawPosition, b.Velocity, dt)
}
