package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
)

// CellAspect is the height/width ratio of a terminal cell
const CellAspect = 2.0

// Viewport maps world coordinates (y up) onto a cell rectangle (y down)
// The world is scaled uniformly, accounting for cell aspect, and centered
type Viewport struct {
	world  core.Rect
	scale  float64 // Columns per world unit
	ox, oy float64 // Cell origin of the world's top-left corner
}

// NewViewport fits world into the cell rectangle at (x, y) of size cols x rows
func NewViewport(world core.Rect, x, y, cols, rows int) Viewport {
	cols, rows = max(cols, 1), max(rows, 1)
	scale := math.Min(float64(cols)/world.Width(), float64(rows)*CellAspect/world.Height())

	usedW := world.Width() * scale
	usedH := world.Height() * scale / CellAspect
	return Viewport{
		world: world,
		scale: scale,
		ox:    float64(x) + (float64(cols)-usedW)/2,
		oy:    float64(y) + (float64(rows)-usedH)/2,
	}
}

// Scale returns columns per world unit
func (v Viewport) Scale() float64 { return v.scale }

// ToCell returns the cell containing world point p
func (v Viewport) ToCell(p r2.Vec) (int, int) {
	lo, hi := v.world.Min(), v.world.Max()
	cx := v.ox + (p.X-lo.X)*v.scale
	cy := v.oy + (hi.Y-p.Y)*v.scale/CellAspect
	return int(math.Floor(cx)), int(math.Floor(cy))
}
