package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// AxisX is the fallback direction for degenerate normals
var AxisX = r2.Vec{X: 1, Y: 0}

// UnitOr returns the unit vector of v, or fallback when v has zero length
// r2.Unit yields NaN for the zero vector
func UnitOr(v, fallback r2.Vec) r2.Vec {
	if v.X == 0 && v.Y == 0 {
		return fallback
	}
	return r2.Unit(v)
}

// WithSpeed returns dir scaled to the given magnitude, dir must be unit length
func WithSpeed(dir r2.Vec, speed float64) r2.Vec {
	return r2.Scale(speed, dir)
}

// FromAngle returns the vector of given length pointing at angle radians
func FromAngle(angle, length float64) r2.Vec {
	s, c := math.Sincos(angle)
	return r2.Vec{X: c * length, Y: s * length}
}

// DistanceSq returns the squared distance between a and b
func DistanceSq(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(a, b))
}

// Integrate returns p + v*dt
func Integrate(p, v r2.Vec, dt float64) r2.Vec {
	return r2.Add(p, r2.Scale(dt, v))
}

// Inward returns a component whose sign points away from the wall on that side
// side > 0 for the positive wall, < 0 for the negative wall
func Inward(component float64, side int) float64 {
	mag := math.Abs(component)
	if side > 0 {
		return -mag
	}
	return mag
}

// IsFinite reports whether both components are finite
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
