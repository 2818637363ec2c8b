package engine

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine/status"
	"github.com/lixenwraith/quadsim/parameter"
	"github.com/lixenwraith/quadsim/physics"
	"github.com/lixenwraith/quadsim/quadtree"
	"github.com/lixenwraith/quadsim/vmath"
)

// ErrInvalidConfig is wrapped by every configuration rejection
var ErrInvalidConfig = errors.New("invalid configuration")

// Params tunes population generation and the collision pipeline
type Params struct {
	// Seed drives all randomness; 0 seeds from the wall clock
	Seed uint64

	MinRadius, MaxRadius float64
	MinSpeed, MaxSpeed   float64
	Rings                int

	MaxObjectsPerNode int
	MaxDepth          int

	// Workers for the broad/narrow phase; 1 is the deterministic serial path, <= 0 uses all CPUs
	Workers int

	// Metrics receives per-tick counters when non-nil
	Metrics *status.Registry
}

// DefaultParams returns the parameter package defaults
func DefaultParams() *Params {
	return &Params{
		MinRadius:         parameter.SpawnMinRadius,
		MaxRadius:         parameter.SpawnMaxRadius,
		MinSpeed:          parameter.SpawnMinSpeed,
		MaxSpeed:          parameter.SpawnMaxSpeed,
		Rings:             parameter.SpawnRings,
		MaxObjectsPerNode: parameter.MaxObjectsPerNode,
		MaxDepth:          parameter.MaxDepth,
		Workers:           parameter.Workers,
	}
}

// TickStats summarizes the most recent fixed tick
type TickStats struct {
	Tick        uint64
	WallBounces int
	Collisions  int
	Candidates  int // Broad-phase candidates tested, excluding self
	Nodes       int
	Duration    time.Duration
}

// Simulation owns the body population and advances it on a fixed tick
// Not safe for concurrent use; the host loop is the single caller
type Simulation struct {
	world  core.Rect
	half   r2.Vec
	bodies []core.Body
	index  *quadtree.Tree

	workers int
	scratch [][]int      // Per-worker candidate buffers
	locks   []sync.Mutex // Per-body, parallel resolve only

	tick uint64
	last TickStats

	metrics *simMetrics
}

// Initialize creates bodyCount bodies with random position, velocity and ring shape
// in a worldWidth x worldHeight rectangle centered on the origin
// Output is deterministic for a non-zero Params.Seed
func Initialize(bodyCount int, worldWidth, worldHeight float64, params ...*Params) (*Simulation, error) {
	p := DefaultParams()
	if len(params) > 0 && params[0] != nil {
		p = params[0]
	}

	if err := validate(bodyCount, worldWidth, worldHeight, p); err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := vmath.NewFastRand(seed)

	world := core.NewRect(0, 0, worldWidth, worldHeight)
	bodies := make([]core.Body, bodyCount)
	for i := range bodies {
		bodies[i] = spawn(i, world, p, rng)
	}

	return newSimulation(world, bodies, p), nil
}

// FromBodies wraps an existing population, validating each body
// The slice is owned by the simulation afterwards
func FromBodies(worldWidth, worldHeight float64, bodies []core.Body, params ...*Params) (*Simulation, error) {
	p := DefaultParams()
	if len(params) > 0 && params[0] != nil {
		p = params[0]
	}
	if len(bodies) == 0 {
		return nil, fmt.Errorf("%w: body count must be positive", ErrInvalidConfig)
	}
	if !(worldWidth > 0) || !(worldHeight > 0) || math.IsInf(worldWidth, 0) || math.IsInf(worldHeight, 0) {
		return nil, fmt.Errorf("%w: world extent %vx%v must be positive", ErrInvalidConfig, worldWidth, worldHeight)
	}
	for i := range bodies {
		if !(bodies[i].Radius > 0) {
			return nil, fmt.Errorf("%w: body %d radius %v must be positive", ErrInvalidConfig, i, bodies[i].Radius)
		}
		if !vmath.IsFinite(bodies[i].Position) || !vmath.IsFinite(bodies[i].Velocity) {
			return nil, fmt.Errorf("%w: body %d has non-finite state", ErrInvalidConfig, i)
		}
	}
	if err := validateSolver(p); err != nil {
		return nil, err
	}

	return newSimulation(core.NewRect(0, 0, worldWidth, worldHeight), bodies, p), nil
}

func newSimulation(world core.Rect, bodies []core.Body, p *Params) *Simulation {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(bodies))

	s := &Simulation{
		world:   world,
		half:    r2.Vec{X: world.HalfW, Y: world.HalfH},
		bodies:  bodies,
		index:   quadtree.New(world, p.MaxObjectsPerNode, p.MaxDepth),
		workers: workers,
		scratch: make([][]int, workers),
	}
	if workers > 1 {
		s.locks = make([]sync.Mutex, len(bodies))
	}
	if p.Metrics != nil {
		s.metrics = newSimMetrics(p.Metrics)
	}
	return s
}

func validate(bodyCount int, width, height float64, p *Params) error {
	switch {
	case bodyCount <= 0:
		return fmt.Errorf("%w: body count %d must be positive", ErrInvalidConfig, bodyCount)
	case !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0):
		return fmt.Errorf("%w: world extent %vx%v must be positive", ErrInvalidConfig, width, height)
	case !OrderedRange(p.MinRadius, p.MaxRadius) || !(p.MinRadius > 0):
		return fmt.Errorf("%w: radius range [%v, %v] must be positive and ordered", ErrInvalidConfig, p.MinRadius, p.MaxRadius)
	case !(2*p.MaxRadius < min(width, height)):
		return fmt.Errorf("%w: max radius %v does not fit world %vx%v", ErrInvalidConfig, p.MaxRadius, width, height)
	case !OrderedRange(p.MinSpeed, p.MaxSpeed):
		return fmt.Errorf("%w: speed range [%v, %v] must be non-negative and ordered", ErrInvalidConfig, p.MinSpeed, p.MaxSpeed)
	case p.Rings < 1:
		return fmt.Errorf("%w: ring count %d must be at least 1", ErrInvalidConfig, p.Rings)
	}
	return validateSolver(p)
}

// OrderedRange reports whether 0 <= lo <= hi with both bounds finite; NaN fails
func OrderedRange(lo, hi float64) bool {
	return lo >= 0 && hi >= lo && !math.IsInf(hi, 0)
}

func validateSolver(p *Params) error {
	if p.MaxObjectsPerNode < 1 {
		return fmt.Errorf("%w: max objects per node %d must be at least 1", ErrInvalidConfig, p.MaxObjectsPerNode)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidConfig, p.MaxDepth)
	}
	return nil
}

// spawn builds body i with concentric rings inside world
func spawn(i int, world core.Rect, p *Params, rng *vmath.FastRand) core.Body {
	radius := rng.Range(p.MinRadius, p.MaxRadius)
	thickness := radius * parameter.RingThicknessRatio

	// Outer ring extent equals radius so the collision radius stays in range
	outer := radius - thickness/2
	shapes := make([]core.Shape, p.Rings)
	for r := range shapes {
		shapes[r] = core.Shape{
			Kind:      core.ShapeCircle,
			Radius:    outer * (1 - float64(r)*parameter.SpawnRingSpacing/float64(p.Rings)),
			Thickness: thickness,
		}
	}

	pos := r2.Vec{
		X: rng.Range(-world.HalfW+radius, world.HalfW-radius),
		Y: rng.Range(-world.HalfH+radius, world.HalfH-radius),
	}
	vel := vmath.FromAngle(rng.Range(0, 2*math.Pi), rng.Range(p.MinSpeed, p.MaxSpeed))

	visual := core.Visual{
		Hue:        math.Mod(float64(i)*parameter.HueStep*360, 360),
		Saturation: rng.Range(parameter.SaturationMin, parameter.SaturationMax),
		Value:      rng.Range(parameter.ValueMin, parameter.ValueMax),
		Thickness:  thickness,
		Phase:      float64(i),
	}

	return core.NewBody(pos, vel, visual, shapes...)
}

// Bodies returns the population; callers read it between ticks and must not retain or mutate it
func (s *Simulation) Bodies() []core.Body { return s.bodies }

// World returns the simulation rectangle
func (s *Simulation) World() core.Rect { return s.world }

// Index returns the spatial index built by the last tick, read-only
func (s *Simulation) Index() *quadtree.Tree { return s.index }

// Workers returns the effective broad/narrow phase worker count
func (s *Simulation) Workers() int { return s.workers }

// LastTick returns statistics of the most recent fixed tick
func (s *Simulation) LastTick() TickStats { return s.last }

// AdvanceFixedTick runs one fixed tick: integrate, rebuild index, broad phase, narrow phase and resolve
// Phases are strictly ordered; retrieval always sees post-integration positions
func (s *Simulation) AdvanceFixedTick(dt float64) {
	start := time.Now()
	s.tick++

	bounces := s.integrate(dt)
	s.index.Build(s.bodies)

	var candidates, collisions int
	if s.workers > 1 {
		candidates, collisions = s.collideParallel()
	} else {
		candidates, collisions = s.collideRange(0, len(s.bodies), &s.scratch[0], nil)
	}

	s.last = TickStats{
		Tick:        s.tick,
		WallBounces: bounces,
		Collisions:  collisions,
		Candidates:  candidates,
		Nodes:       s.index.Len(),
		Duration:    time.Since(start),
	}
	if s.metrics != nil {
		s.metrics.record(s.last)
	}
}

// AdvanceFrame moves draw positions by velocity * dt; authoritative state is untouched
func (s *Simulation) AdvanceFrame(dt float64) {
	for i := range s.bodies {
		physics.Integrate(&s.bodies[i], dt)
	}
}

// integrate resets per-tick flags and steps every body, returning fresh wall reflections
func (s *Simulation) integrate(dt float64) int {
	bounces := 0
	for i := range s.bodies {
		if physics.Step(&s.bodies[i], dt, s.half) {
			bounces++
		}
	}
	return bounces
}

// collideRange runs broad and narrow phase for bodies [lo, hi) as the outer loop
// locks is nil on the serial path
func (s *Simulation) collideRange(lo, hi int, buf *[]int, locks []sync.Mutex) (candidates, collisions int) {
	out := *buf
	for i := lo; i < hi; i++ {
		out = s.index.Retrieve(i, out[:0])
		a := &s.bodies[i]
		for _, j := range out {
			if j == i {
				continue
			}
			candidates++
			b := &s.bodies[j]
			if !physics.Overlapping(a, b) {
				continue
			}
			if locks == nil {
				if physics.Resolve(a, b) {
					collisions++
				}
				continue
			}
			if resolveLocked(a, b, i, j, locks) {
				collisions++
			}
		}
	}
	*buf = out
	return candidates, collisions
}

// resolveLocked serializes resolution of a pair, locking lower index first
func resolveLocked(a, b *core.Body, i, j int, locks []sync.Mutex) bool {
	lo, hi := min(i, j), max(i, j)
	locks[lo].Lock()
	locks[hi].Lock()
	ok := physics.Resolve(a, b)
	locks[hi].Unlock()
	locks[lo].Unlock()
	return ok
}

// collideParallel splits the outer loop into contiguous index ranges, one per worker
// The index and positions are read-only here; velocity/flag writes go through per-body locks
// Resolution order across workers varies, so this path is not bit-deterministic
func (s *Simulation) collideParallel() (candidates, collisions int) {
	n := len(s.bodies)
	chunk := (n + s.workers - 1) / s.workers

	var totalCandidates, totalCollisions atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		wg.Add(1)
		core.Go(func() {
			defer wg.Done()
			c, k := s.collideRange(lo, hi, &s.scratch[w], s.locks)
			totalCandidates.Add(int64(c))
			totalCollisions.Add(int64(k))
		})
	}
	wg.Wait()

	return int(totalCandidates.Load()), int(totalCollisions.Load())
}

// simMetrics caches registry pointers
type simMetrics struct {
	ticks      *atomic.Int64
	collisions *atomic.Int64
	bounces    *atomic.Int64
	candidates *atomic.Int64
	nodes      *atomic.Int64
	tickMs     *status.Gauge
}

func newSimMetrics(r *status.Registry) *simMetrics {
	return &simMetrics{
		ticks:      r.Ints.Get(status.KeyTicks),
		collisions: r.Ints.Get(status.KeyCollisions),
		bounces:    r.Ints.Get(status.KeyWallBounces),
		candidates: r.Ints.Get(status.KeyCandidates),
		nodes:      r.Ints.Get(status.KeyNodes),
		tickMs:     r.Floats.Get(status.KeyTickMs),
	}
}

// record accumulates counters; candidates, nodes and tick time hold the last tick
func (m *simMetrics) record(t TickStats) {
	m.ticks.Add(1)
	m.collisions.Add(int64(t.Collisions))
	m.bounces.Add(int64(t.WallBounces))
	m.candidates.Store(int64(t.Candidates))
	m.nodes.Store(int64(t.Nodes))
	m.tickMs.Set(float64(t.Duration.Microseconds()) / 1000)
}
