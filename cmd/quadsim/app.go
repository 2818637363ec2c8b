package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/quadsim/audio"
	"github.com/lixenwraith/quadsim/config"
	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine"
	"github.com/lixenwraith/quadsim/engine/status"
	"github.com/lixenwraith/quadsim/parameter"
	"github.com/lixenwraith/quadsim/render"
)

// app owns the interactive loop state; only the main goroutine touches it
type app struct {
	cfg      *config.Config
	screen   tcell.Screen
	sim      *engine.Simulation
	renderer *render.Renderer
	sound    *audio.SoundManager
	step     *engine.FixedStep
	metrics  *status.Registry

	seed    uint64
	elapsed float64 // Unpaused presentation seconds, drives the ring pulse

	frames    int
	fps       float64
	fpsWindow time.Time
	lastStats time.Time
}

func newApp(cfg *config.Config, screen tcell.Screen, sound *audio.SoundManager) (*app, error) {
	a := &app{
		cfg:      cfg,
		screen:   screen,
		renderer: render.NewRenderer(screen),
		sound:    sound,
		step:     engine.NewFixedStep(cfg.Solver.TickRate, parameter.MaxCatchUpTicks),
		metrics:  status.NewRegistry(),
		seed:     cfg.Bodies.Seed,
	}
	a.renderer.ShowTree = cfg.Render.ShowTree
	a.renderer.ShowHUD = cfg.Render.ShowHUD

	if a.seed == 0 {
		a.seed = uint64(time.Now().UnixNano())
	}
	if err := a.populate(); err != nil {
		return nil, err
	}

	now := time.Now()
	a.fpsWindow, a.lastStats = now, now
	return a, nil
}

// populate builds a fresh simulation from the config and current seed
func (a *app) populate() error {
	p := a.cfg.Params()
	p.Seed = a.seed
	p.Metrics = a.metrics

	sim, err := engine.Initialize(a.cfg.Bodies.Count, a.cfg.World.Width, a.cfg.World.Height, p)
	if err != nil {
		return fmt.Errorf("initialize simulation: %w", err)
	}
	a.sim = sim
	log.Printf("simulation: %d bodies, seed %d, world %vx%v, workers %d",
		a.cfg.Bodies.Count, a.seed, a.cfg.World.Width, a.cfg.World.Height, sim.Workers())
	return nil
}

// reseed restarts the population with the next seed
func (a *app) reseed() error {
	a.seed++
	if a.seed == 0 {
		a.seed = 1
	}
	return a.populate()
}

// handleEvent applies one terminal event, returning false to quit
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				log.Printf("paused: %v", a.step.Toggle())
			case 't':
				a.renderer.ShowTree = !a.renderer.ShowTree
			case 'h':
				a.renderer.ShowHUD = !a.renderer.ShowHUD
			case 'm':
				log.Printf("muted: %v", a.sound.ToggleMute())
			case 'r':
				if err := a.reseed(); err != nil {
					log.Printf("reseed failed: %v", err)
				}
			}
		}

	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// update runs the fixed ticks due for elapsed real time and advances draw positions
func (a *app) update(elapsed time.Duration) {
	n := a.step.Advance(elapsed)
	if a.step.Paused() {
		return
	}
	a.elapsed += elapsed.Seconds()

	bounces, collisions := 0, 0
	for i := 0; i < n; i++ {
		a.sim.AdvanceFixedTick(a.step.Step())
		st := a.sim.LastTick()
		bounces += st.WallBounces
		collisions += st.Collisions
	}

	if n > 0 {
		// Draw positions were reconciled by the last tick; extrapolate the pending remainder
		a.sim.AdvanceFrame(a.step.Alpha() * a.step.Step())
	} else {
		a.sim.AdvanceFrame(elapsed.Seconds())
	}

	a.sound.Notify(bounces, collisions)
}

// draw renders one frame and refreshes the fps estimate
func (a *app) draw(now time.Time) {
	a.frames++
	if window := now.Sub(a.fpsWindow); window >= time.Second {
		a.fps = float64(a.frames) / window.Seconds()
		a.frames = 0
		a.fpsWindow = now
	}

	a.renderer.Draw(a.sim, a.elapsed, render.HUD{
		TickRate: a.cfg.Solver.TickRate,
		FPS:      a.fps,
		Paused:   a.step.Paused(),
		Muted:    a.sound.Muted(),
	})
}

// logStats writes the metric registry at most once per StatsLogInterval
func (a *app) logStats(now time.Time) {
	if now.Sub(a.lastStats) < parameter.StatsLogInterval {
		return
	}
	a.lastStats = now
	log.Printf("stats %s dropped=%d fps=%.1f", a.metrics, a.step.Dropped(), a.fps)
}

// run drives the loop until quit
func (a *app) run() {
	frameTicker := time.NewTicker(time.Duration(float64(time.Second) / a.cfg.Render.FrameRate))
	defer frameTicker.Stop()

	eventChan := make(chan tcell.Event, 100)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return
			}

		case now := <-frameTicker.C:
			a.update(now.Sub(last))
			last = now
			a.draw(now)
			a.logStats(now)
		}
	}
}
