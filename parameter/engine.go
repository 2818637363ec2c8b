package parameter

import "time"

// Loop timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// TickRate is the default fixed simulation rate in Hz (10ms step)
	TickRate = 100.0

	// FrameRate is the default presentation rate in Hz
	FrameRate = 60.0

	// MaxCatchUpTicks bounds ticks run for one frame after a stall
	MaxCatchUpTicks = 10

	// StatsLogInterval is how often the host logs tick statistics
	StatsLogInterval = 5 * time.Second
)

// World defaults
const (
	WorldWidth  = 640.0
	WorldHeight = 480.0
	BodyCount   = 500
)

// Workers is the default broad/narrow phase worker count, 1 keeps the tick deterministic
const Workers = 1
