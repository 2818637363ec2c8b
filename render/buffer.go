package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/quadsim/core"
)

// Cell is one composited terminal cell
type Cell struct {
	Rune rune
	Fg   core.RGB
	// Weight orders overlapping writes; the heavier stroke wins the cell
	Weight float64
}

// Buffer is a compositor over a flat cell array, flushed to a tcell screen once per frame
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a buffer with the specified dimensions
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells to empty using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{}
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Size returns buffer dimensions
func (b *Buffer) Size() (int, int) { return b.width, b.height }

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set writes a cell unconditionally
func (b *Buffer) Set(x, y int, r rune, fg core.RGB) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Fg: fg, Weight: 1e9}
}

// Stroke writes a cell only if weight is at least the current occupant's
func (b *Buffer) Stroke(x, y int, r rune, fg core.RGB, weight float64) {
	if !b.inBounds(x, y) {
		return
	}
	dst := &b.cells[y*b.width+x]
	if dst.Rune != 0 && dst.Weight > weight {
		return
	}
	*dst = Cell{Rune: r, Fg: fg, Weight: weight}
}

// Text writes s starting at (x, y), clipped to the buffer
func (b *Buffer) Text(x, y int, s string, fg core.RGB) int {
	for _, r := range s {
		b.Set(x, y, r, fg)
		x++
	}
	return x
}

// Get returns the cell at (x, y), zero Cell when out of bounds
func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// Flush copies every cell to screen; empty cells become spaces on bg
func (b *Buffer) Flush(screen tcell.Screen, bg core.RGB) {
	base := tcell.StyleDefault.Background(toTcell(bg))
	for y := 0; y < b.height; y++ {
		row := b.cells[y*b.width : (y+1)*b.width]
		for x, c := range row {
			if c.Rune == 0 {
				screen.SetContent(x, y, ' ', nil, base)
				continue
			}
			screen.SetContent(x, y, c.Rune, nil, base.Foreground(toTcell(c.Fg)))
		}
	}
}

func toTcell(c core.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
