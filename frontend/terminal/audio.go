package terminal

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/wricardo/grovewalk/game/engine"
)

const sampleRate = beep.SampleRate(44100)

const (
	chopFreq     = 220.0
	chopDuration = 60 * time.Millisecond

	fallStartFreq = 330.0
	fallEndFreq   = 90.0
	fallDuration  = 400 * time.Millisecond

	toneVolume = 0.2
)

// Sounder plays feedback for engine events
type Sounder interface {
	Play(ev engine.Event)
}

// Audio plays short synthesized tones through the system speaker
type Audio struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewAudio creates an audio player; call Init before Play
func NewAudio() *Audio {
	return &Audio{mixer: &beep.Mixer{}}
}

// Init opens the speaker
func (a *Audio) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(a.mixer)
	a.initialized = true
	return nil
}

// Close silences the mixer and releases the speaker
func (a *Audio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	speaker.Lock()
	a.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	a.initialized = false
}

// Play queues the tone for ev, if it has one
func (a *Audio) Play(ev engine.Event) {
	tone := toneFor(ev.Type)
	if tone == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return
	}
	speaker.Lock()
	a.mixer.Add(tone)
	speaker.Unlock()
}

// toneFor builds the streamer for an event type; nil means silence
func toneFor(typ engine.EventType) beep.Streamer {
	switch typ {
	case engine.EventChop:
		sine, err := generators.SineTone(sampleRate, chopFreq)
		if err != nil {
			return nil
		}
		return beep.Take(sampleRate.N(chopDuration), gain(sine, toneVolume))
	case engine.EventTreeFalling:
		return NewSweep(sampleRate, fallStartFreq, fallEndFreq, fallDuration)
	}
	return nil
}

func gain(s beep.Streamer, v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= v
			samples[i][1] *= v
		}
		return n, ok
	})
}

// Sweep is a sine glide with a linear decay envelope
type Sweep struct {
	sr       beep.SampleRate
	from, to float64
	pos      int
	total    int
	phase    float64
}

// NewSweep creates a glide from one frequency to another over d
func NewSweep(sr beep.SampleRate, from, to float64, d time.Duration) *Sweep {
	return &Sweep{sr: sr, from: from, to: to, total: sr.N(d)}
}

func (s *Sweep) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.total {
		return 0, false
	}
	for i := range samples {
		if s.pos >= s.total {
			return i, true
		}
		progress := float64(s.pos) / float64(s.total)
		freq := s.from + (s.to-s.from)*progress
		s.phase += 2 * math.Pi * freq / float64(s.sr)
		v := math.Sin(s.phase) * toneVolume * (1 - progress)
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
	}
	return len(samples), true
}

func (s *Sweep) Err() error { return nil }
