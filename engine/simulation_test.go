package engine

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine/status"
)

func ring(x, y, vx, vy, r float64) core.Body {
	return core.NewBody(r2.Vec{X: x, Y: y}, r2.Vec{X: vx, Y: vy}, core.Visual{},
		core.Shape{Kind: core.ShapeCircle, Radius: r})
}

func seeded(seed uint64, workers int) *Params {
	p := DefaultParams()
	p.Seed = seed
	p.Workers = workers
	return p
}

func TestInitializeRejectsInvalidConfig(t *testing.T) {
	mutate := func(fn func(p *Params)) *Params {
		p := seeded(1, 1)
		fn(p)
		return p
	}

	tests := []struct {
		name          string
		count         int
		width, height float64
		params        *Params
	}{
		{"zero bodies", 0, 640, 480, nil},
		{"negative bodies", -3, 640, 480, nil},
		{"zero width", 10, 0, 480, nil},
		{"negative height", 10, 640, -1, nil},
		{"nan width", 10, math.NaN(), 480, nil},
		{"infinite height", 10, 640, math.Inf(1), nil},
		{"zero radius", 10, 640, 480, mutate(func(p *Params) { p.MinRadius = 0 })},
		{"inverted radius", 10, 640, 480, mutate(func(p *Params) { p.MinRadius, p.MaxRadius = 5, 2 })},
		{"radius exceeds world", 10, 20, 20, mutate(func(p *Params) { p.MaxRadius = 10 })},
		{"negative speed", 10, 640, 480, mutate(func(p *Params) { p.MinSpeed = -1 })},
		{"nan max radius", 10, 640, 480, mutate(func(p *Params) { p.MaxRadius = math.NaN() })},
		{"nan min radius", 10, 640, 480, mutate(func(p *Params) { p.MinRadius = math.NaN() })},
		{"nan min speed", 10, 640, 480, mutate(func(p *Params) { p.MinSpeed = math.NaN() })},
		{"nan max speed", 10, 640, 480, mutate(func(p *Params) { p.MaxSpeed = math.NaN() })},
		{"infinite max speed", 10, 640, 480, mutate(func(p *Params) { p.MaxSpeed = math.Inf(1) })},
		{"no rings", 10, 640, 480, mutate(func(p *Params) { p.Rings = 0 })},
		{"zero node capacity", 10, 640, 480, mutate(func(p *Params) { p.MaxObjectsPerNode = 0 })},
		{"negative depth", 10, 640, 480, mutate(func(p *Params) { p.MaxDepth = -1 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := Initialize(tt.count, tt.width, tt.height, tt.params)
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if sim != nil {
				t.Error("simulation returned alongside error")
			}
		})
	}
}

func TestInitializePopulation(t *testing.T) {
	p := seeded(99, 1)
	sim, err := Initialize(1000, 640, 480, p)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	bodies := sim.Bodies()
	if len(bodies) != 1000 {
		t.Fatalf("got %d bodies, want 1000", len(bodies))
	}
	for i, b := range bodies {
		if b.Radius < p.MinRadius || b.Radius > p.MaxRadius+1e-9 {
			t.Fatalf("body %d radius %v outside [%v, %v]", i, b.Radius, p.MinRadius, p.MaxRadius)
		}
		if math.Abs(b.Position.X)+b.Radius > 320 || math.Abs(b.Position.Y)+b.Radius > 240 {
			t.Fatalf("body %d spawned outside world: %v r=%v", i, b.Position, b.Radius)
		}
		speed := r2.Norm(b.Velocity)
		if speed < p.MinSpeed-1e-9 || speed > p.MaxSpeed+1e-9 {
			t.Fatalf("body %d speed %v outside range", i, speed)
		}
		if b.DrawPosition != b.Position {
			t.Fatalf("body %d draw position not reconciled", i)
		}
		if !b.Collidable() {
			t.Fatalf("body %d has no collision shape", i)
		}
	}
}

func TestFromBodiesRejectsInvalid(t *testing.T) {
	if _, err := FromBodies(640, 480, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty population: %v", err)
	}
	if _, err := FromBodies(640, 480, []core.Body{{Kind: core.ShapeCircle}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero radius: %v", err)
	}
	nan := ring(math.NaN(), 0, 0, 0, 2)
	if _, err := FromBodies(640, 480, []core.Body{nan}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nan position: %v", err)
	}
	if _, err := FromBodies(0, 480, []core.Body{ring(0, 0, 0, 0, 2)}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero width: %v", err)
	}
}

func TestDeterministicSerialRuns(t *testing.T) {
	run := func() []core.Body {
		sim, err := Initialize(400, 640, 480, seeded(1234, 1))
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		deltas := []float64{1.0 / 60, 1.0 / 100, 1.0 / 30}
		for i := 0; i < 300; i++ {
			sim.AdvanceFixedTick(deltas[i%len(deltas)])
			sim.AdvanceFrame(0.004)
		}
		return sim.Bodies()
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Velocity != b[i].Velocity ||
			a[i].DrawPosition != b[i].DrawPosition || a[i].EscapingWall != b[i].EscapingWall {
			t.Fatalf("body %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestWallOvershootBoundedWithoutCollisions(t *testing.T) {
	sim, err := Initialize(300, 640, 480, seeded(7, 1))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	// Strip collision geometry so only the wall policy acts
	bodies := sim.Bodies()
	for i := range bodies {
		bodies[i].Kind = core.ShapeNone
	}

	dt := 1.0 / 60
	outX := make([]bool, len(bodies))
	outY := make([]bool, len(bodies))
	for tick := 0; tick < 600; tick++ {
		sim.AdvanceFixedTick(dt)
		for i := range bodies {
			b := &bodies[i]
			ox := math.Abs(b.Position.X) - 320
			oy := math.Abs(b.Position.Y) - 240
			if ox > math.Abs(b.Velocity.X)*dt+1e-9 || oy > math.Abs(b.Velocity.Y)*dt+1e-9 {
				t.Fatalf("tick %d body %d overshoot (%v, %v) exceeds one tick of travel", tick, i, ox, oy)
			}
			// Each axis is back inside on the tick after it overshoots
			if (ox > 0 && outX[i]) || (oy > 0 && outY[i]) {
				t.Fatalf("tick %d body %d still outside after a correction tick", tick, i)
			}
			outX[i], outY[i] = ox > 0, oy > 0
		}
		if sim.LastTick().Collisions != 0 {
			t.Fatal("collision reported for bodies without shapes")
		}
	}
}

func TestSpeedInvariantUnderCollisions(t *testing.T) {
	for _, workers := range []int{1, 4} {
		sim, err := Initialize(800, 640, 480, seeded(21, workers))
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		speeds := make([]float64, len(sim.Bodies()))
		for i, b := range sim.Bodies() {
			speeds[i] = r2.Norm(b.Velocity)
		}

		total := 0
		for tick := 0; tick < 200; tick++ {
			sim.AdvanceFixedTick(0.01)
			total += sim.LastTick().Collisions
		}
		if total == 0 {
			t.Errorf("workers=%d: dense population produced no collisions", workers)
		}

		margin := 20 * DefaultParams().MaxSpeed * 0.01
		for i, b := range sim.Bodies() {
			if math.Abs(r2.Norm(b.Velocity)-speeds[i]) > 1e-9*math.Max(1, speeds[i]) {
				t.Fatalf("workers=%d body %d speed %v, want %v", workers, i, r2.Norm(b.Velocity), speeds[i])
			}
			if math.Abs(b.Position.X) > 320+margin || math.Abs(b.Position.Y) > 240+margin {
				t.Fatalf("workers=%d body %d escaped world: %v", workers, i, b.Position)
			}
		}
	}
}

func TestWallBounceScenario(t *testing.T) {
	bodies := []core.Body{
		ring(-310, 0, 100, 0, 5),
		ring(310, 0, -100, 0, 5),
	}
	sim, err := FromBodies(640, 480, bodies, seeded(1, 1))
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	dt := 1.0 / 60
	a := &sim.Bodies()[0]
	collided := false
	for tick := 0; tick < 2000; tick++ {
		prevVX := a.Velocity.X
		sim.AdvanceFixedTick(dt)
		if sim.LastTick().Collisions > 0 {
			collided = true
		}
		if !a.EscapingWall {
			continue
		}

		if math.Signbit(prevVX) == math.Signbit(a.Velocity.X) {
			t.Fatalf("tick %d: velocity.x did not flip (%v -> %v)", tick, prevVX, a.Velocity.X)
		}
		if math.Abs(a.Position.X) <= 320 {
			t.Fatalf("tick %d: reflection without crossing, x = %v", tick, a.Position.X)
		}

		sim.AdvanceFixedTick(dt)
		if a.EscapingWall {
			t.Fatalf("escape state not cleared on the following tick, x = %v", a.Position.X)
		}
		if math.Abs(a.Position.X) > 320 {
			t.Fatalf("body did not re-enter bounds, x = %v", a.Position.X)
		}
		if !collided {
			t.Error("bodies on a head-on course should collide before reaching a wall")
		}
		return
	}
	t.Fatal("body never reached a wall")
}

func TestHeadOnCollisionScenario(t *testing.T) {
	bodies := []core.Body{
		ring(-5, 0, 50, 0, 6),
		ring(5, 0, -50, 0, 6),
	}
	sim, err := FromBodies(640, 480, bodies, seeded(1, 1))
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	sim.AdvanceFixedTick(1.0 / 60)
	got := sim.Bodies()
	if st := sim.LastTick(); st.Collisions != 1 {
		t.Fatalf("collisions = %d, want 1", st.Collisions)
	}
	if math.Abs(got[0].Velocity.X+50) > 1e-12 || math.Abs(got[1].Velocity.X-50) > 1e-12 {
		t.Errorf("velocities = %v, %v; want reversed", got[0].Velocity, got[1].Velocity)
	}
	if math.Abs(r2.Norm(got[0].Velocity)-50) > 1e-12 || math.Abs(r2.Norm(got[1].Velocity)-50) > 1e-12 {
		t.Error("collision changed speed")
	}
}

func TestLiteralBodiesCollide(t *testing.T) {
	bodies := []core.Body{
		{Position: r2.Vec{X: -5}, Velocity: r2.Vec{X: 50}, Radius: 6},
		{Position: r2.Vec{X: 5}, Velocity: r2.Vec{X: -50}, Radius: 6},
	}
	sim, err := FromBodies(640, 480, bodies, seeded(1, 1))
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}

	sim.AdvanceFixedTick(1.0 / 60)
	got := sim.Bodies()
	if st := sim.LastTick(); st.Collisions != 1 {
		t.Fatalf("collisions = %d, want 1", st.Collisions)
	}
	if !(got[0].Velocity.X < 0) || !(got[1].Velocity.X > 0) {
		t.Errorf("velocities = %v, %v; want reversed", got[0].Velocity, got[1].Velocity)
	}
}

func TestAdvanceFrame(t *testing.T) {
	sim, err := Initialize(50, 640, 480, seeded(3, 1))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	sim.AdvanceFixedTick(0.01)

	before := make([]core.Body, len(sim.Bodies()))
	copy(before, sim.Bodies())

	sim.AdvanceFrame(0)
	for i, b := range sim.Bodies() {
		if b.DrawPosition != before[i].DrawPosition {
			t.Fatalf("body %d: zero frame delta moved draw position", i)
		}
	}

	sim.AdvanceFrame(0.005)
	for i, b := range sim.Bodies() {
		if b.Position != before[i].Position || b.Velocity != before[i].Velocity {
			t.Fatalf("body %d: frame step touched authoritative state", i)
		}
		want := r2.Add(before[i].DrawPosition, r2.Scale(0.005, b.Velocity))
		if b.DrawPosition != want {
			t.Fatalf("body %d: draw position %v, want %v", i, b.DrawPosition, want)
		}
	}

	sim.AdvanceFixedTick(0.01)
	for i, b := range sim.Bodies() {
		if b.DrawPosition != b.Position {
			t.Fatalf("body %d: fixed tick did not reconcile draw position", i)
		}
	}
}

func TestSingleBodyHasNoCandidates(t *testing.T) {
	sim, err := FromBodies(640, 480, []core.Body{ring(0, 0, 10, 10, 3)})
	if err != nil {
		t.Fatalf("FromBodies: %v", err)
	}
	sim.AdvanceFixedTick(0.01)
	if st := sim.LastTick(); st.Candidates != 0 || st.Collisions != 0 {
		t.Errorf("lone body produced stats %+v", st)
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := status.NewRegistry()
	p := seeded(5, 1)
	p.Metrics = reg

	sim, err := Initialize(200, 640, 480, p)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	collisions := 0
	for i := 0; i < 10; i++ {
		sim.AdvanceFixedTick(0.01)
		collisions += sim.LastTick().Collisions
	}

	if got := reg.Ints.Get(status.KeyTicks).Load(); got != 10 {
		t.Errorf("ticks metric = %d, want 10", got)
	}
	if got := reg.Ints.Get(status.KeyCollisions).Load(); got != int64(collisions) {
		t.Errorf("collisions metric = %d, want %d", got, collisions)
	}
	if got := reg.Ints.Get(status.KeyNodes).Load(); got != int64(sim.Index().Len()) {
		t.Errorf("nodes metric = %d, want %d", got, sim.Index().Len())
	}
	if sim.LastTick().Tick != 10 {
		t.Errorf("tick counter = %d, want 10", sim.LastTick().Tick)
	}
}

func TestWorkersClampedToPopulation(t *testing.T) {
	sim, err := Initialize(3, 640, 480, seeded(1, 16))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if sim.Workers() != 3 {
		t.Errorf("workers = %d, want 3", sim.Workers())
	}
	sim.AdvanceFixedTick(0.01)
}

func BenchmarkTickSerial(b *testing.B)   { benchmarkTick(b, 1) }
func BenchmarkTickParallel(b *testing.B) { benchmarkTick(b, 0) }

func benchmarkTick(b *testing.B, workers int) {
	sim, err := Initialize(5000, 1280, 960, seeded(8, workers))
	if err != nil {
		b.Fatalf("Initialize: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.AdvanceFixedTick(0.01)
	}
}
