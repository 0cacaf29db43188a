package audio

import (
	"math"
	"testing"

	"github.com/microvita/microcosm/components"
)

// TestGeneratorsProduceBoundedStereo verifies the procedural streamers
// fill both channels with in-range samples.
func TestGeneratorsProduceBoundedStereo(t *testing.T) {
	generators := []struct {
		name string
		s    interface {
			Stream(samples [][2]float64) (int, bool)
			Err() error
		}
	}{
		{"hum", newHumGenerator(44100, 140, 0.6)},
		{"chime", newChimeGenerator(44100, 520, 0.6)},
	}

	for _, g := range generators {
		t.Run(g.name, func(t *testing.T) {
			samples := make([][2]float64, 2048)
			n, ok := g.s.Stream(samples)
			if n != len(samples) || !ok {
				t.Fatalf("Stream = (%d, %v), want (%d, true)", n, ok, len(samples))
			}
			if g.s.Err() != nil {
				t.Fatalf("Err = %v", g.s.Err())
			}

			var nonZero bool
			for i, s := range samples {
				if math.Abs(s[0]) > 1 || math.Abs(s[1]) > 1 {
					t.Fatalf("sample %d = %v, outside [-1, 1]", i, s)
				}
				if s[0] != s[1] {
					t.Fatalf("sample %d not centered: %v", i, s)
				}
				if s[0] != 0 {
					nonZero = true
				}
			}
			if !nonZero {
				t.Error("generator produced silence")
			}
		})
	}
}

// TestChimeDecays verifies the chime envelope dies off.
func TestChimeDecays(t *testing.T) {
	g := newChimeGenerator(44100, 520, 0.6)

	early := make([][2]float64, 4410) // first 100ms
	g.Stream(early)
	late := make([][2]float64, 4410) // well into the decay
	for i := 0; i < 4; i++ {
		g.Stream(late)
	}

	peak := func(buf [][2]float64) float64 {
		var p float64
		for _, s := range buf {
			if a := math.Abs(s[0]); a > p {
				p = a
			}
		}
		return p
	}
	if peak(late) >= peak(early)/10 {
		t.Errorf("chime did not decay: early peak %v, late peak %v", peak(early), peak(late))
	}
}

// TestUninitializedPlayerDropsCues verifies cues are safely ignored
// before the audio device is opened.
func TestUninitializedPlayerDropsCues(t *testing.T) {
	p := NewPlayer(44100, 0.6)
	p.Trigger(components.CueBindingMode, 1)
	p.Trigger(components.CueColonyFormed, 1)
	p.Trigger(components.CueNone, 1)

	if len(p.playing) != 0 {
		t.Errorf("uninitialized player queued %d cues, want 0", len(p.playing))
	}

	// Cleanup before Initialize is a no-op.
	p.Cleanup()
}
