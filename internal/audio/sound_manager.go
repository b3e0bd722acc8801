// Package audio plays the match sound effects through the system speaker.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/gravitywell/internal/game"
	log "github.com/sirupsen/logrus"
)

const (
	sampleRate = beep.SampleRate(44100)
	volume     = 0.25
)

// Sound identifies one effect.
type Sound int

const (
	SoundNone Sound = iota
	SoundHit
	SoundScore
	SoundGravity
	SoundFinish
)

// SoundManager plays effects for simulation events. Every method is safe to
// call before Initialize or after it failed; playback is then a no-op.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	enabled     bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer:   &beep.Mixer{},
		enabled: true,
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// SetEnabled mutes or unmutes effects.
func (sm *SoundManager) SetEnabled(enabled bool) {
	sm.mu.Lock()
	sm.enabled = enabled
	sm.mu.Unlock()
}

// HandleEvent implements game.EventSink.
func (sm *SoundManager) HandleEvent(e game.Event) {
	sm.Play(soundFor(e))
}

func soundFor(e game.Event) Sound {
	switch e.Type {
	case game.EventBallHitPaddle:
		return SoundHit
	case game.EventPointScored:
		return SoundScore
	case game.EventWellActivated:
		return SoundGravity
	case game.EventMatchFinished:
		return SoundFinish
	}
	return SoundNone
}

// Play queues s on the mixer.
func (sm *SoundManager) Play(s Sound) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || !sm.enabled {
		return
	}
	st := streamerFor(s)
	if st == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(st)
	speaker.Unlock()
}

// streamerFor builds a finite streamer for s.
func streamerFor(s Sound) beep.Streamer {
	switch s {
	case SoundHit:
		return tone(880, 60*time.Millisecond)
	case SoundScore:
		return newSweep(660, 220, 300*time.Millisecond)
	case SoundGravity:
		return newSweep(110, 180, 200*time.Millisecond)
	case SoundFinish:
		return beep.Seq(
			tone(523, 120*time.Millisecond),
			tone(659, 120*time.Millisecond),
			tone(784, 240*time.Millisecond),
		)
	}
	return nil
}

func tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		log.Debugf("[AUDIO] tone %.0fHz: %v", freq, err)
		return nil
	}
	return beep.Take(sampleRate.N(d), gain(sine))
}

func gain(s beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			samples[i][0] *= volume
			samples[i][1] *= volume
		}
		return n, ok
	})
}

// sweep glides linearly from one frequency to another with a fade-out.
type sweep struct {
	from, to float64
	total    int
	pos      int
	phase    float64
}

func newSweep(from, to float64, d time.Duration) *sweep {
	return &sweep{from: from, to: to, total: sampleRate.N(d)}
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.total {
		return 0, false
	}
	n := 0
	for i := range samples {
		if s.pos >= s.total {
			break
		}
		progress := float64(s.pos) / float64(s.total)
		freq := s.from + (s.to-s.from)*progress
		s.phase += 2 * math.Pi * freq / float64(sampleRate)
		v := volume * (1 - progress) * math.Sin(s.phase)
		samples[i][0], samples[i][1] = v, v
		s.pos++
		n++
	}
	return n, true
}

func (s *sweep) Err() error { return nil }
