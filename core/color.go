package core

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB stores explicit 8-bit color channels, decoupled from tcell
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack = RGB{0, 0, 0}
	RGBGray  = RGB{90, 90, 100}
	RGBWhite = RGB{230, 230, 230}
)

// Blend performs alpha blending: result = src*alpha + dst*(1-alpha)
func (c RGB) Blend(src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return c
	}
	if alpha >= 1 {
		return src
	}
	inv := 1.0 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv),
	}
}

// Scale multiplies each channel by factor (for fading effects)
func (c RGB) Scale(factor float64) RGB {
	if factor <= 0 {
		return RGBBlack
	}
	if factor >= 1 {
		return c
	}
	return RGB{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}

// Visual holds presentation attributes; physics never reads it
type Visual struct {
	Hue        float64 // Degrees [0, 360)
	Saturation float64 // [0, 1]
	Value      float64 // [0, 1]
	Thickness  float64 // Base ring stroke in world units
	Phase      float64 // Pulse phase offset in radians
}

// RGB converts the HSV attributes to 8-bit channels
func (v Visual) RGB() RGB {
	r, g, b := colorful.Hsv(math.Mod(v.Hue, 360), v.Saturation, v.Value).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// PulseThickness returns the stroke at elapsed seconds for a sine pulse of the given amplitude and frequency
// Clamped to minThickness so rings never vanish
func (v Visual) PulseThickness(elapsed, amplitude, frequency, minThickness float64) float64 {
	t := v.Thickness + amplitude*math.Sin(elapsed*frequency+v.Phase)
	return max(t, minThickness)
}
