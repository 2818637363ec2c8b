package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// envelope applies a linear attack/release to a bounded streamer so clicks do not pop
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope wraps s, ending the stream after duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.totalSamples {
		return 0, false
	}
	if rest := e.totalSamples - e.position; len(samples) > rest {
		samples = samples[:rest]
	}
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		} else if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s by a linear gain; math.Log2(0) is -Inf so zero gain is silent
func newVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain), Silent: false}
}

// NewClick builds a short enveloped sine tone at freq Hz
func NewClick(rate beep.SampleRate, freq float64, duration time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, err
	}
	edge := duration / 6
	return newVolume(NewEnvelope(sine, duration, edge, edge*2, rate), 0.5), nil
}
