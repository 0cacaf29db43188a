// Package audio provides procedural one-shot sound cues.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/microvita/microcosm/components"
)

// Player renders sound cues through the speaker. A cue that is still
// playing is not retriggered, so a coordinator firing the binding-mode
// cue every tick produces a steady hum instead of a stutter.
//
// An uninitialized player silently drops all cues; headless runs never
// touch the audio device.
type Player struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	masterVol   float64
	playing     map[components.SoundCue]*beep.Ctrl
	initialized bool
}

// NewPlayer creates an inactive player. Call Initialize to open the
// audio device.
func NewPlayer(sampleRate int, masterVolume float64) *Player {
	return &Player{
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      &beep.Mixer{},
		masterVol:  masterVolume,
		playing:    make(map[components.SoundCue]*beep.Ctrl, 4),
	}
}

// Initialize opens the speaker and starts the mixer.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup pauses everything and clears the mixer.
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	for _, ctrl := range p.playing {
		ctrl.Paused = true
	}
	p.mixer.Clear()
	p.initialized = false
}

// Trigger plays the cue at the given volume unless the same cue is
// already sounding. Safe to call from parallel workers.
func (p *Player) Trigger(cue components.SoundCue, volume float32) {
	if cue == components.CueNone {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	if ctrl, ok := p.playing[cue]; ok && !ctrl.Paused {
		return
	}

	gain := p.masterVol * float64(volume)
	var streamer beep.Streamer
	switch cue {
	case components.CueBindingMode:
		streamer = beep.Take(p.sampleRate.N(time.Millisecond*400), newHumGenerator(p.sampleRate, 140, gain))
	case components.CueColonyFormed:
		streamer = beep.Take(p.sampleRate.N(time.Millisecond*250), newChimeGenerator(p.sampleRate, 520, gain))
	default:
		return
	}

	ctrl := &beep.Ctrl{Streamer: beep.Seq(streamer, beep.Callback(func() {
		p.mu.Lock()
		delete(p.playing, cue)
		p.mu.Unlock()
	}))}
	p.playing[cue] = ctrl
	p.mixer.Add(ctrl)
}

// humGenerator produces a low two-harmonic hum.
type humGenerator struct {
	sr   beep.SampleRate
	freq float64
	gain float64
	pos  int
}

func newHumGenerator(sr beep.SampleRate, freq, gain float64) *humGenerator {
	return &humGenerator{sr: sr, freq: freq, gain: gain}
}

func (g *humGenerator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		s := 0.6*math.Sin(2*math.Pi*g.freq*t) + 0.25*math.Sin(2*math.Pi*g.freq*2*t)
		attack := math.Min(t/0.03, 1)
		s *= g.gain * 0.2 * attack
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *humGenerator) Err() error { return nil }

// chimeGenerator produces a short decaying chime.
type chimeGenerator struct {
	sr   beep.SampleRate
	freq float64
	gain float64
	pos  int
}

func newChimeGenerator(sr beep.SampleRate, freq, gain float64) *chimeGenerator {
	return &chimeGenerator{sr: sr, freq: freq, gain: gain}
}

func (g *chimeGenerator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		envelope := math.Exp(-t * 12)
		s := envelope * (0.5*math.Sin(2*math.Pi*g.freq*t) + 0.2*math.Sin(2*math.Pi*g.freq*1.5*t))
		s *= g.gain * 0.3
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *chimeGenerator) Err() error { return nil }
