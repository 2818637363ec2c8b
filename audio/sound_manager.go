package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/quadsim/parameter"
)

const sampleRate = beep.SampleRate(parameter.AudioSampleRate)

// Event is a simulation occurrence that produces a click
type Event int

const (
	EventBounce Event = iota
	EventCollision
	eventCount
)

func (e Event) String() string {
	switch e {
	case EventBounce:
		return "bounce"
	case EventCollision:
		return "collision"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Tone returns the click frequency for the event
func (e Event) Tone() float64 {
	if e == EventCollision {
		return parameter.CollisionToneHz
	}
	return parameter.BounceToneHz
}

// SoundManager plays rate-limited clicks for wall bounces and collisions
// Every method is a safe no-op when the speaker is unavailable
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	master      *effects.Volume
	initialized bool
	muted       bool

	cooldown time.Duration
	last     [eventCount]time.Time
	played   [eventCount]uint64

	// now is replaceable for rate-limit tests
	now func() time.Time
}

// NewSoundManager creates a sound manager with master volume as a base-2 exponent
func NewSoundManager(volume float64) *SoundManager {
	mixer := &beep.Mixer{}
	return &SoundManager{
		mixer:    mixer,
		master:   &effects.Volume{Streamer: mixer, Base: 2, Volume: volume},
		cooldown: parameter.ClickCooldown,
		now:      time.Now,
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*50)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	speaker.Play(sm.master)
	sm.initialized = true
	return nil
}

// Initialized reports whether the speaker is live
func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	sm.initialized = false
}

// SetMuted silences or restores output; clicks are not queued while muted
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.setMuted(muted)
}

// ToggleMute flips mute and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.setMuted(!sm.muted)
	return sm.muted
}

// Muted returns current mute state
func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

func (sm *SoundManager) setMuted(muted bool) {
	sm.muted = muted
	if !sm.initialized {
		sm.master.Silent = muted
		return
	}
	speaker.Lock()
	sm.master.Silent = muted
	if muted {
		sm.mixer.Clear()
	}
	speaker.Unlock()
}

// Play queues a click for event unless muted, uninitialized or within the cooldown
// Returns true when a click was queued
func (sm *SoundManager) Play(event Event) bool {
	if event < 0 || event >= eventCount {
		return false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.admit(event) || !sm.initialized {
		return false
	}

	click, err := NewClick(sampleRate, event.Tone(), parameter.ClickDuration)
	if err != nil {
		return false
	}

	speaker.Lock()
	sm.mixer.Add(click)
	speaker.Unlock()
	return true
}

// Notify plays at most one click per event kind for the counts of one frame
func (sm *SoundManager) Notify(bounces, collisions int) {
	if bounces > 0 {
		sm.Play(EventBounce)
	}
	if collisions > 0 {
		sm.Play(EventCollision)
	}
}

// Played returns the number of clicks admitted for event
func (sm *SoundManager) Played(event Event) uint64 {
	if event < 0 || event >= eventCount {
		return 0
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[event]
}

// admit applies mute and per-event rate limiting, independent of the device
func (sm *SoundManager) admit(event Event) bool {
	if sm.muted {
		return false
	}
	now := sm.now()
	if last := sm.last[event]; !last.IsZero() && now.Sub(last) < sm.cooldown {
		return false
	}
	sm.last[event] = now
	sm.played[event]++
	return true
}
