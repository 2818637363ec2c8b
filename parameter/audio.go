package parameter

import "time"

// Click tones
const (
	AudioSampleRate = 48000

	BounceToneHz    = 880.0
	CollisionToneHz = 440.0
	ClickDuration   = 30 * time.Millisecond

	// ClickCooldown rate-limits clicks of one kind
	ClickCooldown = 60 * time.Millisecond

	// AudioVolume is a base-2 exponent (0 = unity, -1 = half)
	AudioVolume = -2.0
)
