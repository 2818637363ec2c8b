package core

import "gonum.org/v1/gonum/spatial/r2"

// ShapeKind tags the collision geometry of a shape
type ShapeKind uint8

// ShapeCircle is the zero value so a Body literal with a radius collides
const (
	// ShapeCircle is a ring of given radius and stroke thickness
	ShapeCircle ShapeKind = iota
	// ShapeNone carries no collision geometry and is never tested
	ShapeNone
)

// Shape is one visual/collision primitive attached to a body, centered on the body
type Shape struct {
	Kind      ShapeKind
	Radius    float64
	Thickness float64
}

// Extent returns the outer reach of the shape from the body center
func (s Shape) Extent() float64 {
	if s.Kind == ShapeNone {
		return 0
	}
	return s.Radius + s.Thickness/2
}

// Body is a simulated circular body
// Position and Velocity are authoritative; DrawPosition is presentation-only
type Body struct {
	Position     r2.Vec
	DrawPosition r2.Vec
	Velocity     r2.Vec

	// Radius is the collision radius, fixed at construction
	Radius float64
	// Kind is ShapeCircle when any attached shape collides
	Kind   ShapeKind
	Shapes []Shape
	Visual Visual

	// EscapingWall is set while the body is pushed back from a penetrated wall
	EscapingWall bool
	// Resolved is set once a collision adjusted the velocity this tick
	Resolved bool
}

// NewBody builds a body whose collision radius is the maximum extent of its shapes
func NewBody(position, velocity r2.Vec, visual Visual, shapes ...Shape) Body {
	b := Body{
		Position:     position,
		DrawPosition: position,
		Velocity:     velocity,
		Shapes:       shapes,
		Visual:       visual,
		Kind:         ShapeNone,
	}
	for _, s := range shapes {
		if s.Kind == ShapeNone {
			continue
		}
		b.Kind = ShapeCircle
		b.Radius = max(b.Radius, s.Extent())
	}
	return b
}

// Collidable reports whether the body has collision geometry
func (b *Body) Collidable() bool {
	return b.Kind != ShapeNone && b.Radius > 0
}

// SetPosition moves the body authoritatively and reconciles the draw position
func (b *Body) SetPosition(p r2.Vec) {
	b.Position = p
	b.DrawPosition = p
}
