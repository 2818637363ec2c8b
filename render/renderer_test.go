package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func redRing(x, y, radius float64) core.Body {
	visual := core.Visual{Hue: 0, Saturation: 1, Value: 1, Thickness: 4}
	return core.NewBody(r2.Vec{X: x, Y: y}, r2.Vec{X: 10}, visual,
		core.Shape{Kind: core.ShapeCircle, Radius: radius, Thickness: 4})
}

func rowText(b *Buffer, y int) string {
	w, _ := b.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		c := b.Get(x, y)
		if c.Rune == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

func TestViewportMapping(t *testing.T) {
	world := core.NewRect(0, 0, 640, 480)
	vp := NewViewport(world, 0, 0, 80, 24)

	if vp.Scale() != 0.1 {
		t.Fatalf("scale = %v, want 0.1", vp.Scale())
	}

	tests := []struct {
		p    r2.Vec
		x, y int
	}{
		{r2.Vec{}, 40, 12},
		{r2.Vec{X: -320, Y: 240}, 8, 0},
		{r2.Vec{X: 100, Y: 100}, 50, 7},  // y up maps to rows above center
		{r2.Vec{X: 0, Y: -100}, 40, 17}, // y down maps below
	}
	for _, tt := range tests {
		x, y := vp.ToCell(tt.p)
		if x != tt.x || y != tt.y {
			t.Errorf("ToCell(%v) = (%d, %d), want (%d, %d)", tt.p, x, y, tt.x, tt.y)
		}
	}
}

func TestDrawRing(t *testing.T) {
	screen := newScreen(t, 80, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(0, 0, 40)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	r := NewRenderer(screen)
	r.ShowHUD = false
	r.Draw(sim, 0, HUD{})

	buf := r.Buffer()
	edge := buf.Get(44, 12)
	if edge.Rune == 0 {
		t.Fatalf("no stroke at ring edge, row: %q", rowText(buf, 12))
	}
	if edge.Fg != (core.RGB{R: 255}) {
		t.Errorf("ring color = %+v, want pure red", edge.Fg)
	}
	if c := buf.Get(40, 12); c.Rune != 0 {
		t.Errorf("ring interior filled with %q", c.Rune)
	}
}

func TestDrawDoesNotTouchPhysics(t *testing.T) {
	screen := newScreen(t, 80, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(10, -20, 5), redRing(-100, 50, 8)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}
	before := append([]core.Body(nil), sim.Bodies()...)

	r := NewRenderer(screen)
	r.ShowTree = true
	for i := 0; i < 5; i++ {
		r.Draw(sim, float64(i)*0.1, HUD{})
	}

	for i, b := range sim.Bodies() {
		if b.Position != before[i].Position || b.Velocity != before[i].Velocity || b.DrawPosition != before[i].DrawPosition {
			t.Errorf("body %d changed by rendering", i)
		}
	}
}

func TestDrawSmallBodyAsDot(t *testing.T) {
	screen := newScreen(t, 80, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(0, 0, 2)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	r := NewRenderer(screen)
	r.ShowHUD = false
	r.Draw(sim, 0, HUD{})

	if c := r.Buffer().Get(40, 12); c.Rune != '•' {
		t.Errorf("center cell = %q, want dot", c.Rune)
	}
}

func TestDrawHUD(t *testing.T) {
	screen := newScreen(t, 120, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(0, 0, 5)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}
	sim.AdvanceFixedTick(0.01)

	r := NewRenderer(screen)
	r.Draw(sim, 0, HUD{TickRate: 100, Paused: true, Muted: true})

	line := rowText(r.Buffer(), 0)
	for _, want := range []string{"bodies 1", "tick 1", "100Hz", "workers 1", "PAUSED", "MUTED"} {
		if !strings.Contains(line, want) {
			t.Errorf("HUD %q missing %q", line, want)
		}
	}
}

func TestDrawTreeOverlay(t *testing.T) {
	screen := newScreen(t, 80, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(0, 0, 5)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}
	sim.AdvanceFixedTick(0.01)

	r := NewRenderer(screen)
	r.ShowHUD = false
	r.Draw(sim, 0, HUD{})
	if c := r.Buffer().Get(20, 0); c.Rune != 0 {
		t.Errorf("overlay drawn while disabled: %q", c.Rune)
	}

	r.ShowTree = true
	r.Draw(sim, 0, HUD{})
	if c := r.Buffer().Get(20, 0); c.Rune != '·' {
		t.Errorf("root border cell = %q, want overlay dot", c.Rune)
	}
}

func TestDrawFollowsResize(t *testing.T) {
	screen := newScreen(t, 80, 24)
	sim, err := engine.FromBodies(640, 480, []core.Body{redRing(0, 0, 5)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	r := NewRenderer(screen)
	r.Draw(sim, 0, HUD{})
	screen.SetSize(100, 30)
	r.Draw(sim, 0, HUD{})

	if w, h := r.Buffer().Size(); w != 100 || h != 30 {
		t.Errorf("buffer size = %dx%d, want 100x30", w, h)
	}
}

func TestBufferStrokeWeight(t *testing.T) {
	b := NewBuffer(4, 4)
	b.Stroke(1, 1, 'a', core.RGBWhite, 2)
	b.Stroke(1, 1, 'b', core.RGBGray, 1)
	if c := b.Get(1, 1); c.Rune != 'a' {
		t.Errorf("lighter stroke replaced heavier: %q", c.Rune)
	}
	b.Stroke(1, 1, 'c', core.RGBGray, 3)
	if c := b.Get(1, 1); c.Rune != 'c' {
		t.Errorf("heavier stroke rejected: %q", c.Rune)
	}

	b.Stroke(-1, 9, 'x', core.RGBWhite, 1)
	b.Clear()
	if c := b.Get(1, 1); c.Rune != 0 {
		t.Errorf("clear left %q", c.Rune)
	}
}
