package metrics

import (
	"math"

	"github.com/san-kum/orbsim/internal/sim"
)

func kinetic(f sim.Frame) float64 {
	total := 0.0
	for _, b := range f.Bodies {
		total += 0.5 * b.Mass * (b.Vel.X*b.Vel.X + b.Vel.Y*b.Vel.Y)
	}
	return total
}

// Energy is the mean total kinetic energy over the observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	e.totalEnergy += kinetic(f)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDecay is the fraction of the first frame's kinetic energy still
// present in the latest frame. Damping and inelastic contacts only ever
// lower it.
type EnergyDecay struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(f sim.Frame) {
	energy := kinetic(f)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyDecay) Value() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 1
	}
	return e.currentEnergy / e.initialEnergy
}

func (e *EnergyDecay) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}

// Momentum tracks the largest total momentum magnitude seen.
type Momentum struct {
	name string
	max  float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum_max"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(f sim.Frame) {
	px, py := 0.0, 0.0
	for _, b := range f.Bodies {
		px += b.Mass * b.Vel.X
		py += b.Mass * b.Vel.Y
	}
	m.max = math.Max(m.max, math.Hypot(px, py))
}

func (m *Momentum) Value() float64 { return m.max }

func (m *Momentum) Reset() { m.max = 0 }

// Kinetic returns the total kinetic energy of a frame.
func Kinetic(f sim.Frame) float64 { return kinetic(f) }
