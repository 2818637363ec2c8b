package parameter

// Quadtree limits
const (
	// MaxObjectsPerNode is the stored-body count above which a node splits
	MaxObjectsPerNode = 8

	// MaxDepth caps subdivision so clustered bodies cannot recurse without bound
	MaxDepth = 12
)

// Spawn ranges (world units, world units/sec)
const (
	SpawnMinRadius = 2.0
	SpawnMaxRadius = 5.0
	SpawnMinSpeed  = 30.0
	SpawnMaxSpeed  = 120.0

	// SpawnRings is the number of concentric rings per body
	SpawnRings = 1

	// SpawnRingSpacing is the gap between concentric rings as a fraction of the outer radius
	SpawnRingSpacing = 0.35
)

// Ring stroke relative to radius and the pulse applied at draw time
const (
	RingThicknessRatio = 0.2
	PulseAmplitude     = 0.5
	PulseFrequency     = 10.0
	PulseMinThickness  = 0.1
)

// Ring palette, hue advances by HueStep of the wheel per body index
const (
	HueStep       = 0.1
	SaturationMin = 0.6
	SaturationMax = 1.0
	ValueMin      = 0.8
	ValueMax      = 1.0
)
