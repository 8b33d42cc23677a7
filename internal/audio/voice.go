package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
)

func wave(w WaveType, phase float64) float64 {
	switch w {
	case WaveTriangle:
		return 4.0*math.Abs(phase-0.5) - 1.0
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a finite tone of the given frequency and shape.
func NewOscillator(freq float64, duration time.Duration, w WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     w,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		v := wave(o.wave, o.phase)
		samples[i][0] = v
		samples[i][1] = v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay shapes a stream with a linear attack followed by an exponential tail.
type decay struct {
	streamer beep.Streamer
	position int
	attack   int
	tau      float64
}

func NewDecay(s beep.Streamer, attack, tau time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{
		streamer: s,
		attack:   rate.N(attack),
		tau:      float64(rate.N(tau)),
	}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1.0
		if d.position < d.attack {
			gain = float64(d.position) / float64(d.attack)
		} else if d.tau > 0 {
			gain = math.Exp(-float64(d.position-d.attack) / d.tau)
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// newVolume scales s linearly; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// pad is a continuous triangle drone whose level follows a per-frame
// envelope, interpolated between frames.
type pad struct {
	freq     float64
	phase    float64
	levels   []float64
	perFrame int
	position int
	rate     beep.SampleRate
}

func (p *pad) Stream(samples [][2]float64) (n int, ok bool) {
	total := len(p.levels) * p.perFrame
	for i := range samples {
		if p.position >= total {
			return i, i > 0
		}
		frame := p.position / p.perFrame
		frac := float64(p.position%p.perFrame) / float64(p.perFrame)
		level := p.levels[frame]
		if frame+1 < len(p.levels) {
			level += (p.levels[frame+1] - level) * frac
		}

		v := wave(WaveTriangle, p.phase) * level
		samples[i][0] = v
		samples[i][1] = v

		p.phase += p.freq / float64(p.rate)
		p.phase -= math.Floor(p.phase)
		p.position++
	}
	return len(samples), true
}

func (p *pad) Err() error { return nil }
