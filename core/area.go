package core

import "gonum.org/v1/gonum/spatial/r2"

// Quadrant indices used by Rect.Quadrant, y grows upward
const (
	QuadrantNW = iota
	QuadrantNE
	QuadrantSW
	QuadrantSE
	QuadrantNone = -1
)

// Rect is an axis-aligned rectangle stored as center and half extents
type Rect struct {
	CX, CY       float64 // Center
	HalfW, HalfH float64 // Half extents (> 0)
}

// NewRect returns a rectangle of the given full size centered on (cx, cy)
func NewRect(cx, cy, width, height float64) Rect {
	return Rect{CX: cx, CY: cy, HalfW: width / 2, HalfH: height / 2}
}

// Min returns the lower-left corner
func (r Rect) Min() r2.Vec { return r2.Vec{X: r.CX - r.HalfW, Y: r.CY - r.HalfH} }

// Max returns the upper-right corner
func (r Rect) Max() r2.Vec { return r2.Vec{X: r.CX + r.HalfW, Y: r.CY + r.HalfH} }

// Width returns the full width
func (r Rect) Width() float64 { return r.HalfW * 2 }

// Height returns the full height
func (r Rect) Height() float64 { return r.HalfH * 2 }

// Quadrant returns one of the four equal sub-rectangles
func (r Rect) Quadrant(q int) Rect {
	hw, hh := r.HalfW/2, r.HalfH/2
	switch q {
	case QuadrantNW:
		return Rect{CX: r.CX - hw, CY: r.CY + hh, HalfW: hw, HalfH: hh}
	case QuadrantNE:
		return Rect{CX: r.CX + hw, CY: r.CY + hh, HalfW: hw, HalfH: hh}
	case QuadrantSW:
		return Rect{CX: r.CX - hw, CY: r.CY - hh, HalfW: hw, HalfH: hh}
	default:
		return Rect{CX: r.CX + hw, CY: r.CY - hh, HalfW: hw, HalfH: hh}
	}
}

// ContainsCircle reports whether the circle lies strictly inside the rectangle
// A circle touching an edge is not contained
func (r Rect) ContainsCircle(p r2.Vec, radius float64) bool {
	return p.X-radius > r.CX-r.HalfW && p.X+radius < r.CX+r.HalfW &&
		p.Y-radius > r.CY-r.HalfH && p.Y+radius < r.CY+r.HalfH
}

// QuadrantOf returns the single quadrant that strictly contains the circle,
// or QuadrantNone when the circle straddles a split line or leaves the rectangle
func (r Rect) QuadrantOf(p r2.Vec, radius float64) int {
	if !r.ContainsCircle(p, radius) {
		return QuadrantNone
	}

	west := p.X+radius < r.CX
	east := p.X-radius > r.CX
	north := p.Y-radius > r.CY
	south := p.Y+radius < r.CY

	switch {
	case north && west:
		return QuadrantNW
	case north && east:
		return QuadrantNE
	case south && west:
		return QuadrantSW
	case south && east:
		return QuadrantSE
	}
	return QuadrantNone
}
