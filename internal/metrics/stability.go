package metrics

import "github.com/san-kum/orbsim/internal/sim"

// Containment is the fraction of frames in which every body stayed fully
// inside the viewport.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(f sim.Frame) {
	c.samples++
	for _, b := range f.Bodies {
		// Degenerate viewports park bodies at the midpoint; nothing to check.
		if f.Extent.X < 2*b.Radius || f.Extent.Y < 2*b.Radius {
			continue
		}
		if b.Pos.X < b.Radius || b.Pos.X > f.Extent.X-b.Radius ||
			b.Pos.Y < b.Radius || b.Pos.Y > f.Extent.Y-b.Radius {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
