package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/quadsim/engine"
	"github.com/lixenwraith/quadsim/parameter"
)

// Config is the run configuration decoded from a TOML file over Default()
type Config struct {
	Debug bool `toml:"debug"`

	World  WorldConfig  `toml:"world"`
	Bodies BodiesConfig `toml:"bodies"`
	Solver SolverConfig `toml:"solver"`
	Render RenderConfig `toml:"render"`
	Audio  AudioConfig  `toml:"audio"`
}

type WorldConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type BodiesConfig struct {
	Count     int     `toml:"count"`
	Seed      uint64  `toml:"seed"` // 0 seeds from the clock
	MinRadius float64 `toml:"min_radius"`
	MaxRadius float64 `toml:"max_radius"`
	MinSpeed  float64 `toml:"min_speed"`
	MaxSpeed  float64 `toml:"max_speed"`
	Rings     int     `toml:"rings"`
}

type SolverConfig struct {
	TickRate          float64 `toml:"tick_rate"`
	MaxObjectsPerNode int     `toml:"max_objects_per_node"`
	MaxDepth          int     `toml:"max_depth"`
	Workers           int     `toml:"workers"` // 0 = all CPUs, 1 = serial
}

type RenderConfig struct {
	FrameRate float64 `toml:"frame_rate"`
	ShowTree  bool    `toml:"show_tree"`
	ShowHUD   bool    `toml:"show_hud"`
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"` // Base-2 exponent
}

// Default returns a fresh configuration filled from the parameter package
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:  parameter.WorldWidth,
			Height: parameter.WorldHeight,
		},
		Bodies: BodiesConfig{
			Count:     parameter.BodyCount,
			MinRadius: parameter.SpawnMinRadius,
			MaxRadius: parameter.SpawnMaxRadius,
			MinSpeed:  parameter.SpawnMinSpeed,
			MaxSpeed:  parameter.SpawnMaxSpeed,
			Rings:     parameter.SpawnRings,
		},
		Solver: SolverConfig{
			TickRate:          parameter.TickRate,
			MaxObjectsPerNode: parameter.MaxObjectsPerNode,
			MaxDepth:          parameter.MaxDepth,
			Workers:           parameter.Workers,
		},
		Render: RenderConfig{
			FrameRate: parameter.FrameRate,
			ShowHUD:   true,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  parameter.AudioVolume,
		},
	}
}

// Load decodes path over the defaults and validates the result
// Keys present in the file but unknown to Config are returned for the caller to report
func Load(path string) (*Config, []string, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", path, err)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, unknown, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, unknown, nil
}

// Decode parses TOML text over the defaults, for embedded or test configs
func Decode(data string) (*Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, unknown, err
	}
	return cfg, unknown, nil
}

// Validate reports every violated constraint, each wrapping engine.ErrInvalidConfig
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{engine.ErrInvalidConfig}, args...)...))
	}

	w, h := c.World.Width, c.World.Height
	if !positive(w) || !positive(h) {
		fail("world %vx%v must be positive and finite", w, h)
	}

	b := c.Bodies
	if b.Count <= 0 {
		fail("bodies.count %d must be positive", b.Count)
	}
	if !positive(b.MinRadius) || !engine.OrderedRange(b.MinRadius, b.MaxRadius) {
		fail("bodies radius range [%v, %v] invalid", b.MinRadius, b.MaxRadius)
	} else if positive(w) && positive(h) && !(2*b.MaxRadius < min(w, h)) {
		fail("bodies.max_radius %v does not fit world %vx%v", b.MaxRadius, w, h)
	}
	if !engine.OrderedRange(b.MinSpeed, b.MaxSpeed) {
		fail("bodies speed range [%v, %v] invalid", b.MinSpeed, b.MaxSpeed)
	}
	if b.Rings < 1 {
		fail("bodies.rings %d must be at least 1", b.Rings)
	}

	s := c.Solver
	if !positive(s.TickRate) {
		fail("solver.tick_rate %v must be positive", s.TickRate)
	}
	if s.MaxObjectsPerNode < 1 {
		fail("solver.max_objects_per_node %d must be at least 1", s.MaxObjectsPerNode)
	}
	if s.MaxDepth < 0 {
		fail("solver.max_depth %d must not be negative", s.MaxDepth)
	}
	if s.Workers < 0 {
		fail("solver.workers %d must not be negative", s.Workers)
	}

	if !positive(c.Render.FrameRate) {
		fail("render.frame_rate %v must be positive", c.Render.FrameRate)
	}
	if math.IsNaN(c.Audio.Volume) || math.IsInf(c.Audio.Volume, 0) {
		fail("audio.volume %v must be finite", c.Audio.Volume)
	}

	return errors.Join(errs...)
}

// Params maps the configuration onto simulation parameters
func (c *Config) Params() *engine.Params {
	p := engine.DefaultParams()
	p.Seed = c.Bodies.Seed
	p.MinRadius = c.Bodies.MinRadius
	p.MaxRadius = c.Bodies.MaxRadius
	p.MinSpeed = c.Bodies.MinSpeed
	p.MaxSpeed = c.Bodies.MaxSpeed
	p.Rings = c.Bodies.Rings
	p.MaxObjectsPerNode = c.Solver.MaxObjectsPerNode
	p.MaxDepth = c.Solver.MaxDepth
	p.Workers = c.Solver.Workers
	return p
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
