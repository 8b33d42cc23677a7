package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 333)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = max(p, s[0], -s[0])
	}
	return p
}

func TestOscillatorLength(t *testing.T) {
	osc := NewOscillator(440, 10*time.Millisecond, WaveSine, SampleRate)
	samples := drain(osc)
	if len(samples) != SampleRate.N(10*time.Millisecond) {
		t.Errorf("expected %d samples, got %d", SampleRate.N(10*time.Millisecond), len(samples))
	}
	if p := peak(samples); p > 1 || p < 0.9 {
		t.Errorf("unexpected peak %f", p)
	}
	if osc.Err() != nil {
		t.Errorf("unexpected error %v", osc.Err())
	}
}

func TestDecayAttenuates(t *testing.T) {
	osc := NewOscillator(200, 200*time.Millisecond, WaveTriangle, SampleRate)
	samples := drain(NewDecay(osc, time.Millisecond, 10*time.Millisecond, SampleRate))

	head := peak(samples[:SampleRate.N(20*time.Millisecond)])
	tail := peak(samples[SampleRate.N(150*time.Millisecond):])
	if tail >= head/100 {
		t.Errorf("expected tail to decay, head %f tail %f", head, tail)
	}
}

func TestSonifierSilentRun(t *testing.T) {
	s := NewSonifier(20 * time.Millisecond)
	frames := make([]sim.Frame, 10)

	samples := drain(s.Streamer(frames))
	if len(samples) != s.Samples(10) {
		t.Fatalf("expected %d samples, got %d", s.Samples(10), len(samples))
	}
	if peak(samples) != 0 {
		t.Error("expected silence for frames without events or motion")
	}
}

func TestSonifierEvents(t *testing.T) {
	s := NewSonifier(20 * time.Millisecond)
	s.PadVolume = 0
	frames := make([]sim.Frame, 10)
	frames[5].Collisions = 2
	frames[7].Bounces = 10

	samples := drain(s.Streamer(frames))
	if len(samples) != s.Samples(10) {
		t.Fatalf("expected %d samples, got %d", s.Samples(10), len(samples))
	}

	perFrame := SampleRate.N(20 * time.Millisecond)
	if peak(samples[:5*perFrame]) != 0 {
		t.Error("expected silence before the first event")
	}
	if peak(samples[5*perFrame:]) == 0 {
		t.Error("expected sound after a collision")
	}
}

func TestSonifierPadFollowsEnergy(t *testing.T) {
	s := NewSonifier(50 * time.Millisecond)
	moving := sim.Frame{Bodies: []orb.Snapshot{{Vel: orb.Vec2{X: 2}, Mass: 1}}}
	frames := []sim.Frame{moving, moving, {}, {}}

	samples := drain(s.Streamer(frames))
	perFrame := SampleRate.N(50 * time.Millisecond)
	if peak(samples[:perFrame]) == 0 {
		t.Error("expected drone while bodies move")
	}
	if peak(samples[3*perFrame:]) != 0 {
		t.Error("expected silence once bodies are at rest")
	}
}

func TestWriteWAV(t *testing.T) {
	s := NewSonifier(10 * time.Millisecond)
	frames := make([]sim.Frame, 4)
	frames[1].Collisions = 1

	path := filepath.Join(t.TempDir(), "run.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteWAV(f, frames); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE header")
	}
	if want := 44 + s.Samples(4)*4; len(data) != want {
		t.Errorf("expected %d bytes, got %d", want, len(data))
	}
}
