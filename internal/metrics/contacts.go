package metrics

import "github.com/san-kum/orbsim/internal/sim"

// Collisions counts resolved orb-orb contacts.
type Collisions struct {
	name  string
	count int
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collisions"}
}

func (c *Collisions) Name() string        { return c.name }
func (c *Collisions) Observe(f sim.Frame) { c.count += f.Collisions }
func (c *Collisions) Value() float64      { return float64(c.count) }
func (c *Collisions) Reset()              { c.count = 0 }

// Bounces counts wall reflections, one per axis.
type Bounces struct {
	name  string
	count int
}

func NewBounces() *Bounces {
	return &Bounces{name: "bounces"}
}

func (b *Bounces) Name() string        { return b.name }
func (b *Bounces) Observe(f sim.Frame) { b.count += f.Bounces }
func (b *Bounces) Value() float64      { return float64(b.count) }
func (b *Bounces) Reset()              { b.count = 0 }

// Defaults returns the metrics every run records.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDecay(),
		NewMomentum(),
		NewContainment(),
		NewCollisions(),
		NewBounces(),
	}
}
