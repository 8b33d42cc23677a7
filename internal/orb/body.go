package orb

import (
	"fmt"
	"math"
)

const (
	DefaultDamping     = 0.98
	DefaultRestitution = 0.85
	// DefaultSpeed is the width of the uniform range initial velocity
	// components are drawn from, centered on zero.
	DefaultSpeed = 3.0
)

// Bounce reports which axes hit a wall during an Integrate call.
type Bounce uint8

const (
	BounceX Bounce = 1 << iota
	BounceY
)

func (b Bounce) Count() int {
	n := 0
	if b&BounceX != 0 {
		n++
	}
	if b&BounceY != 0 {
		n++
	}
	return n
}

type Body struct {
	Pos Vec2
	Vel Vec2

	radius      float64
	mass        float64
	damping     float64
	restitution float64
}

// New creates a body at rest centered at pos.
func New(pos Vec2, radius, damping, restitution float64) (*Body, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("radius %v: %w", radius, ErrParameterBounds)
	}
	if !(damping > 0 && damping <= 1) {
		return nil, fmt.Errorf("damping %v not in (0,1]: %w", damping, ErrParameterBounds)
	}
	if !(restitution >= 0 && restitution <= 1) {
		return nil, fmt.Errorf("restitution %v not in [0,1]: %w", restitution, ErrParameterBounds)
	}
	return &Body{
		Pos:         pos,
		radius:      radius,
		mass:        math.Pi * radius * radius,
		damping:     damping,
		restitution: restitution,
	}, nil
}

// FromRect creates a body whose radius and center come from the element's
// initial bounding rectangle.
func FromRect(r Rect, vel Vec2, damping, restitution float64) (*Body, error) {
	if r.Radius() <= 0 {
		return nil, ErrEmptyRect
	}
	b, err := New(r.Center(), r.Radius(), damping, restitution)
	if err != nil {
		return nil, err
	}
	b.Vel = vel
	return b, nil
}

func (b *Body) Radius() float64      { return b.radius }
func (b *Body) Mass() float64        { return b.mass }
func (b *Body) Damping() float64     { return b.damping }
func (b *Body) Restitution() float64 { return b.restitution }

// Integrate advances the body by dt steps inside a viewport of the given
// extent. Position is updated before damping is applied; each axis is then
// clamped and reflected independently.
func (b *Body) Integrate(dt float64, extent Vec2) Bounce {
	if !(dt > 0) {
		dt = 0
	}

	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	b.Vel = b.Vel.Scale(b.damping)

	var hit Bounce
	if reflect(&b.Pos.X, &b.Vel.X, b.radius, extent.X, b.restitution) {
		hit |= BounceX
	}
	if reflect(&b.Pos.Y, &b.Vel.Y, b.radius, extent.Y, b.restitution) {
		hit |= BounceY
	}
	return hit
}

func reflect(pos, vel *float64, radius, extent, restitution float64) bool {
	lo, hi := radius, extent-radius

	// A viewport narrower than the body has no valid range; park it in the middle.
	if !(hi >= lo) {
		mid := extent / 2
		if math.IsNaN(mid) || math.IsInf(mid, 0) {
			mid = 0
		}
		*pos = mid
		*vel = 0
		return true
	}

	switch {
	case *pos < lo:
		*pos = lo
		*vel = math.Abs(*vel) * restitution
		return true
	case *pos > hi:
		*pos = hi
		*vel = -math.Abs(*vel) * restitution
		return true
	}
	return false
}

// Contain clamps the position into the viewport without touching velocity.
// Pair resolution runs after Integrate and may push a body past a wall.
func (b *Body) Contain(extent Vec2) {
	b.Pos.X = clamp(b.Pos.X, b.radius, extent.X)
	b.Pos.Y = clamp(b.Pos.Y, b.radius, extent.Y)
}

func clamp(pos, radius, extent float64) float64 {
	lo, hi := radius, extent-radius
	if !(hi >= lo) {
		return extent / 2
	}
	return math.Max(lo, math.Min(hi, pos))
}

// KineticEnergy returns ½·m·|v|².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * b.Vel.Dot(b.Vel)
}

func (b *Body) Momentum() Vec2 {
	return b.Vel.Scale(b.mass)
}

// Snapshot is a read-only copy of a body's state.
type Snapshot struct {
	Pos         Vec2
	Vel         Vec2
	Radius      float64
	Mass        float64
	Damping     float64
	Restitution float64
}

func (b *Body) Snapshot() Snapshot {
	return Snapshot{
		Pos:         b.Pos,
		Vel:         b.Vel,
		Radius:      b.radius,
		Mass:        b.mass,
		Damping:     b.damping,
		Restitution: b.restitution,
	}
}
