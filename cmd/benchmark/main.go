package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/lixenwraith/quadsim/engine"
	"github.com/lixenwraith/quadsim/parameter"
)

var (
	bodies  = flag.Int("bodies", 5000, "Body count")
	ticks   = flag.Int("ticks", 1000, "Fixed ticks per run")
	workers = flag.Int("workers", 0, "Parallel run worker count, 0 = all CPUs")
	seed    = flag.Uint64("seed", 1, "Population seed")
	width   = flag.Float64("width", 4*parameter.WorldWidth, "World width")
	height  = flag.Float64("height", 4*parameter.WorldHeight, "World height")
)

type result struct {
	workers    int
	elapsed    time.Duration
	candidates int64
	collisions int64
	bounces    int64
	maxNodes   int
}

func run(n, workerCount int) (result, error) {
	p := engine.DefaultParams()
	p.Seed = *seed
	p.Workers = workerCount

	sim, err := engine.Initialize(n, *width, *height, p)
	if err != nil {
		return result{}, err
	}

	dt := 1.0 / parameter.TickRate
	r := result{workers: sim.Workers()}
	start := time.Now()
	for i := 0; i < *ticks; i++ {
		sim.AdvanceFixedTick(dt)
		st := sim.LastTick()
		r.candidates += int64(st.Candidates)
		r.collisions += int64(st.Collisions)
		r.bounces += int64(st.WallBounces)
		r.maxNodes = max(r.maxNodes, st.Nodes)
	}
	r.elapsed = time.Since(start)
	return r, nil
}

func report(r result, n int) {
	perTick := float64(r.candidates) / float64(*ticks)
	fmt.Printf("  Workers %d:\n", r.workers)
	fmt.Printf("    Total Time:     %v\n", r.elapsed)
	fmt.Printf("    Ticks/s:        %.1f\n", float64(*ticks)/r.elapsed.Seconds())
	fmt.Printf("    Avg Tick:       %v\n", r.elapsed/time.Duration(*ticks))
	fmt.Printf("    Candidates/body:%8.2f\n", perTick/float64(n))
	fmt.Printf("    Collisions/tick:%8.2f\n", float64(r.collisions)/float64(*ticks))
	fmt.Printf("    Bounces/tick:   %8.2f\n", float64(r.bounces)/float64(*ticks))
	fmt.Printf("    Peak Nodes:     %d\n", r.maxNodes)
}

func main() {
	flag.Parse()
	if *ticks <= 0 {
		fmt.Fprintln(os.Stderr, "ticks must be positive")
		os.Exit(2)
	}

	n := *bodies
	brute := int64(n) * int64(n-1) / 2

	fmt.Printf("Benchmark Results:\n")
	fmt.Printf("  Bodies:         %d\n", n)
	fmt.Printf("  World:          %vx%v\n", *width, *height)
	fmt.Printf("  Ticks:          %d\n", *ticks)
	fmt.Printf("  Brute Pairs:    %d per tick\n", brute)

	serial, err := run(n, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(2)
	}
	report(serial, n)

	// Candidates count ordered pairs, brute force counts unordered ones
	pairs := float64(serial.candidates) / 2 / float64(*ticks)
	if brute > 0 {
		fmt.Printf("  Pruned:         %.2f%% of brute-force pairs tested\n", 100*pairs/float64(brute))
	}

	parallel, err := run(n, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(2)
	}
	if parallel.workers != serial.workers {
		report(parallel, n)
		fmt.Printf("  Speedup:        %.2fx\n", serial.elapsed.Seconds()/parallel.elapsed.Seconds())
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("  Total Alloc:    %d bytes\n", m.TotalAlloc)
	fmt.Printf("  Mallocs:        %d\n", m.Mallocs)
}
