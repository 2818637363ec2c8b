package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/quadsim/audio"
	"github.com/lixenwraith/quadsim/config"
	"github.com/lixenwraith/quadsim/core"
	"github.com/lixenwraith/quadsim/engine"
)

var (
	configPath = flag.String("config", "", "TOML configuration file")
	bodiesFlag = flag.Int("bodies", 0, "Body count (overrides config)")
	seedFlag   = flag.Uint64("seed", 0, "Random seed, 0 = time-seeded (overrides config)")
	workerFlag = flag.Int("workers", -1, "Collision workers, 0 = all CPUs, 1 = deterministic (overrides config)")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/quadsim.log")
	muteFlag   = flag.Bool("mute", false, "Start with audio disabled")
	treeFlag   = flag.Bool("tree", false, "Start with the quadtree overlay")
)

// loadConfig reads the optional file then applies explicitly set flags
// Unknown file keys are returned for logging once the log file is open
func loadConfig() (*config.Config, []string, error) {
	cfg := config.Default()
	var unknown []string
	if *configPath != "" {
		loaded, keys, err := config.Load(*configPath)
		if err != nil {
			return nil, keys, err
		}
		cfg, unknown = loaded, keys
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bodies":
			cfg.Bodies.Count = *bodiesFlag
		case "seed":
			cfg.Bodies.Seed = *seedFlag
		case "workers":
			cfg.Solver.Workers = *workerFlag
		case "debug":
			cfg.Debug = *debugFlag
		case "mute":
			cfg.Audio.Enabled = !*muteFlag
		case "tree":
			cfg.Render.ShowTree = *treeFlag
		}
	})
	return cfg, unknown, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, unknown, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		for _, key := range unknown {
			fmt.Fprintf(os.Stderr, "  unknown key %q\n", key)
		}
		os.Exit(2)
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}
	for _, key := range unknown {
		log.Printf("config: unknown key %q ignored", key)
	}
	log.Printf("config: %+v", *cfg)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic Recovery: Ensure terminal is reset even if the loop or a worker crashes
	core.SetCrashFinalizer(screen.Fini)
	defer func() {
		core.HandleCrash(recover())
	}()

	sound := audio.NewSoundManager(cfg.Audio.Volume)
	if cfg.Audio.Enabled {
		// Non-fatal, the simulation runs without sound
		if err := sound.Initialize(); err != nil {
			log.Printf("Audio initialization failed: %v", err)
		}
	} else {
		sound.SetMuted(true)
	}

	a, err := newApp(cfg, screen, sound)
	if err != nil {
		sound.Cleanup()
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		if errors.Is(err, engine.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	a.run()

	core.SetCrashFinalizer(nil)
	sound.Cleanup()
	screen.Fini()
	log.Printf("exit after %d ticks", a.sim.LastTick().Tick)
}
