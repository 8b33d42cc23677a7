package orb

import "math"

// Collision describes an overlap between two bodies, measured from the
// receiver toward the other body.
type Collision struct {
	DX, DY      float64
	Distance    float64
	MinDistance float64
}

// Overlap is how far the two circles interpenetrate.
func (c Collision) Overlap() float64 { return c.MinDistance - c.Distance }

// Normal is the unit vector from the receiver toward the other body.
// Coincident centers have no direction; they are separated along +X.
func (c Collision) Normal() Vec2 {
	if !(c.Distance > 0) || math.IsInf(c.Distance, 0) {
		return Vec2{X: 1}
	}
	return Vec2{c.DX / c.Distance, c.DY / c.Distance}
}

// DetectCollision reports whether b and other overlap. It has no side effects.
func (b *Body) DetectCollision(other *Body) (Collision, bool) {
	dx := other.Pos.X - b.Pos.X
	dy := other.Pos.Y - b.Pos.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	minDist := b.radius + other.radius

	if dist < minDist {
		return Collision{DX: dx, DY: dy, Distance: dist, MinDistance: minDist}, true
	}
	return Collision{}, false
}

// ResolveCollision pushes both bodies apart by half the overlap each and,
// unless they are already separating, applies an equal and opposite impulse
// along the contact normal using the smaller of the two restitutions.
//
// The positional correction runs even for separating pairs.
func (b *Body) ResolveCollision(other *Body, c Collision) {
	n := c.Normal()

	sep := n.Scale(c.Overlap() * 0.5)
	b.Pos = b.Pos.Sub(sep)
	other.Pos = other.Pos.Add(sep)

	vn := other.Vel.Sub(b.Vel).Dot(n)
	if vn > 0 {
		return
	}

	e := math.Min(b.restitution, other.restitution)
	j := -(1 + e) * vn / (b.mass + other.mass)
	impulse := n.Scale(j)

	b.Vel = b.Vel.Sub(impulse.Scale(other.mass))
	other.Vel = other.Vel.Add(impulse.Scale(b.mass))
}
