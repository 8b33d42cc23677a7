// Package audio renders simulation events as sound.
package audio

import (
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/orbsim/internal/sim"
)

const (
	SampleRate = beep.SampleRate(44100)

	collisionBase = 440.0
	bounceBase    = 110.0
	padFreq       = 98.0
	toneLength    = 120 * time.Millisecond
)

// Sonifier maps frames to sound: a rising sine ping per orb-orb contact, a
// low triangle thump per wall bounce and a drone following kinetic energy.
type Sonifier struct {
	Rate          beep.SampleRate
	FrameDuration time.Duration
	Volume        float64
	PadVolume     float64
	// MaxVoices caps the tones started on any one frame.
	MaxVoices int
}

func NewSonifier(frame time.Duration) *Sonifier {
	return &Sonifier{
		Rate:          SampleRate,
		FrameDuration: frame,
		Volume:        0.3,
		PadVolume:     0.15,
		MaxVoices:     4,
	}
}

// Samples returns the length, in samples, of the rendering of n frames.
func (s *Sonifier) Samples(n int) int {
	return s.Rate.N(s.FrameDuration) * n
}

func (s *Sonifier) tone(freq float64, w WaveType) beep.Streamer {
	osc := NewOscillator(freq, toneLength, w, s.Rate)
	return newVolume(NewDecay(osc, 2*time.Millisecond, 30*time.Millisecond, s.Rate), s.Volume)
}

// Streamer renders frames into a finite stereo stream.
func (s *Sonifier) Streamer(frames []sim.Frame) beep.Streamer {
	perFrame := s.Rate.N(s.FrameDuration)
	tl := &timeline{total: perFrame * len(frames)}

	if s.PadVolume > 0 && perFrame > 0 {
		tl.events = append(tl.events, event{start: 0, s: &pad{
			freq:     padFreq,
			levels:   energyLevels(frames, s.PadVolume),
			perFrame: perFrame,
			rate:     s.Rate,
		}})
	}

	for i, f := range frames {
		start := i * perFrame
		voices := 0
		for c := 0; c < f.Collisions && voices < s.MaxVoices; c++ {
			freq := collisionBase * math.Pow(2, float64(min(c, 12))/12)
			tl.events = append(tl.events, event{start: start, s: s.tone(freq, WaveSine)})
			voices++
		}
		for b := 0; b < f.Bounces && voices < s.MaxVoices; b++ {
			tl.events = append(tl.events, event{start: start, s: s.tone(bounceBase, WaveTriangle)})
			voices++
		}
	}
	return tl
}

// WriteWAV encodes the rendering of frames as 16-bit stereo WAV.
func (s *Sonifier) WriteWAV(w io.WriteSeeker, frames []sim.Frame) error {
	format := beep.Format{SampleRate: s.Rate, NumChannels: 2, Precision: 2}
	return wav.Encode(w, s.Streamer(frames), format)
}

// energyLevels normalises per-frame kinetic energy against the run's peak.
func energyLevels(frames []sim.Frame, volume float64) []float64 {
	levels := make([]float64, len(frames))
	peak := 0.0
	for i, f := range frames {
		for _, b := range f.Bodies {
			levels[i] += 0.5 * b.Mass * b.Vel.Dot(b.Vel)
		}
		peak = math.Max(peak, levels[i])
	}
	for i := range levels {
		if peak > 0 {
			levels[i] = levels[i] / peak * volume
		}
	}
	return levels
}

type event struct {
	start int
	s     beep.Streamer
}

// timeline starts each event at its sample offset and sums everything
// playing, for exactly total samples. Events must be sorted by start.
type timeline struct {
	events []event
	next   int
	active []beep.Streamer
	buf    [][2]float64
	pos    int
	total  int
}

func (t *timeline) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	n = min(len(samples), t.total-t.pos)
	clear(samples[:n])

	for i := 0; i < n; {
		for t.next < len(t.events) && t.events[t.next].start <= t.pos+i {
			t.active = append(t.active, t.events[t.next].s)
			t.next++
		}
		chunk := n - i
		if t.next < len(t.events) {
			chunk = min(chunk, t.events[t.next].start-(t.pos+i))
		}
		t.mix(samples[i : i+chunk])
		i += chunk
	}
	t.pos += n
	return n, true
}

// mix adds every active voice into dst and drops the drained ones.
func (t *timeline) mix(dst [][2]float64) {
	if len(t.buf) < len(dst) {
		t.buf = make([][2]float64, len(dst))
	}
	live := t.active[:0]
	for _, s := range t.active {
		filled, drained := 0, false
		for filled < len(dst) {
			sn, sok := s.Stream(t.buf[:len(dst)-filled])
			for k := 0; k < sn; k++ {
				dst[filled+k][0] += t.buf[k][0]
				dst[filled+k][1] += t.buf[k][1]
			}
			filled += sn
			if !sok {
				drained = true
				break
			}
			if sn == 0 {
				break
			}
		}
		if !drained {
			live = append(live, s)
		}
	}
	t.active = live
}

func (t *timeline) Err() error { return nil }
