package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine"
	"github.com/lixenwraith/quadsim/parameter"
)

// Palette
var (
	RgbBackground = core.RGB{R: 26, G: 27, B: 38}
	RgbTree       = core.RGB{R: 59, G: 66, B: 97}
	RgbHUD        = core.RGB{R: 192, G: 202, B: 245}
	RgbHUDAlert   = core.RGB{R: 247, G: 118, B: 142}
)

// HUD carries host state shown in the status line
type HUD struct {
	TickRate float64
	FPS      float64
	Paused   bool
	Muted    bool
}

// Renderer draws a simulation onto a tcell screen
// Reads only draw positions and visual attributes; physics state is never modified
type Renderer struct {
	screen tcell.Screen
	buf    *Buffer

	ShowTree bool
	ShowHUD  bool
}

// NewRenderer creates a renderer sized to the screen
func NewRenderer(screen tcell.Screen) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen:  screen,
		buf:     NewBuffer(w, h),
		ShowHUD: true,
	}
}

// Buffer exposes the composited frame of the last Draw
func (r *Renderer) Buffer() *Buffer { return r.buf }

// Draw composites one frame at elapsed seconds and shows it
func (r *Renderer) Draw(sim *engine.Simulation, elapsed float64, hud HUD) {
	w, h := r.screen.Size()
	if bw, bh := r.buf.Size(); bw != w || bh != h {
		r.buf.Resize(w, h)
	} else {
		r.buf.Clear()
	}

	top := 0
	if r.ShowHUD {
		top = 1
	}
	vp := NewViewport(sim.World(), 0, top, w, h-top)

	if r.ShowTree {
		r.drawTree(sim, vp)
	}

	bodies := sim.Bodies()
	for i := range bodies {
		r.drawBody(&bodies[i], vp, elapsed)
	}

	if r.ShowHUD {
		r.drawHUD(sim, hud, w)
	}

	r.buf.Flush(r.screen, RgbBackground)
	r.screen.Show()
}

// drawTree outlines every leaf node of the spatial index
func (r *Renderer) drawTree(sim *engine.Simulation, vp Viewport) {
	sim.Index().Walk(func(bounds core.Rect, depth, stored int, leaf bool) {
		if !leaf {
			return
		}
		x0, y1 := vp.ToCell(bounds.Min())
		x1, y0 := vp.ToCell(bounds.Max())
		for x := x0; x <= x1; x++ {
			r.buf.Stroke(x, y0, '·', RgbTree, 0)
			r.buf.Stroke(x, y1, '·', RgbTree, 0)
		}
		for y := y0; y <= y1; y++ {
			r.buf.Stroke(x0, y, '·', RgbTree, 0)
			r.buf.Stroke(x1, y, '·', RgbTree, 0)
		}
	})
}

// drawBody strokes each ring of the body with its pulsed thickness
func (r *Renderer) drawBody(b *core.Body, vp Viewport, elapsed float64) {
	color := b.Visual.RGB()
	pulse := b.Visual.PulseThickness(elapsed, parameter.PulseAmplitude, parameter.PulseFrequency, parameter.PulseMinThickness) - b.Visual.Thickness

	// Sub-cell bodies collapse to a dot
	if b.Radius*vp.Scale() < 0.75 {
		x, y := vp.ToCell(b.DrawPosition)
		r.buf.Stroke(x, y, '•', color, b.Radius)
		return
	}

	for _, s := range b.Shapes {
		if s.Kind == core.ShapeNone || s.Radius <= 0 {
			continue
		}
		thickness := max(s.Thickness+pulse, parameter.PulseMinThickness)
		r.strokeRing(b.DrawPosition, s.Radius, thickness, vp, color)
	}
}

// strokeRing samples the annulus [radius-thickness/2, radius+thickness/2] at sub-cell spacing
func (r *Renderer) strokeRing(center r2.Vec, radius, thickness float64, vp Viewport, color core.RGB) {
	scale := vp.Scale()
	glyph := ringGlyph(thickness * scale)

	inner := max(radius-thickness/2, 0)
	outer := radius + thickness/2
	bands := max(1, min(8, int(math.Ceil(thickness*scale*2))))
	samples := max(8, min(720, int(math.Ceil(2*math.Pi*outer*scale*2))))

	for k := 0; k < bands; k++ {
		rr := radius
		if bands > 1 {
			rr = inner + (outer-inner)*float64(k)/float64(bands-1)
		}
		for s := 0; s < samples; s++ {
			a := 2 * math.Pi * float64(s) / float64(samples)
			p := r2.Vec{X: center.X + rr*math.Cos(a), Y: center.Y + rr*math.Sin(a)}
			x, y := vp.ToCell(p)
			r.buf.Stroke(x, y, glyph, color, thickness)
		}
	}
}

// ringGlyph picks a shade block from stroke width in cells
func ringGlyph(cells float64) rune {
	switch {
	case cells >= 1:
		return '█'
	case cells >= 0.5:
		return '▓'
	case cells >= 0.25:
		return '▒'
	default:
		return '░'
	}
}

func (r *Renderer) drawHUD(sim *engine.Simulation, hud HUD, width int) {
	st := sim.LastTick()
	line := fmt.Sprintf(" bodies %d  tick %d  %.0fHz  fps %.0f  collisions %d  bounces %d  candidates %d  nodes %d  workers %d ",
		len(sim.Bodies()), st.Tick, hud.TickRate, hud.FPS, st.Collisions, st.WallBounces, st.Candidates, st.Nodes, sim.Workers())

	for x := 0; x < width; x++ {
		r.buf.Set(x, 0, ' ', RgbHUD)
	}
	x := r.buf.Text(0, 0, line, RgbHUD)
	if hud.Paused {
		x = r.buf.Text(x, 0, "PAUSED ", RgbHUDAlert)
	}
	if hud.Muted {
		r.buf.Text(x, 0, "MUTED ", RgbHUDAlert)
	}
}
