// Package source supplies the elements a simulation is built over and the
// handles that receive their positions.
package source

import (
	"math"
	"math/rand"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
)

const defaultTrail = 32

// Marker is the host-side stand-in for one rendered orb. It remembers the
// last position pushed by the simulation and a short trail.
type Marker struct {
	Index  int
	Center orb.Vec2
	Radius float64
	Trail  []orb.Vec2

	trailLen int
}

func NewMarker(index int, bounds orb.Rect, trailLen int) *Marker {
	return &Marker{
		Index:    index,
		Center:   bounds.Center(),
		Radius:   bounds.Radius(),
		Trail:    make([]orb.Vec2, 0, trailLen),
		trailLen: trailLen,
	}
}

func (m *Marker) Place(center orb.Vec2, radius float64) {
	m.Center, m.Radius = center, radius
	if m.trailLen <= 0 {
		return
	}
	if len(m.Trail) == m.trailLen {
		copy(m.Trail, m.Trail[1:])
		m.Trail = m.Trail[:len(m.Trail)-1]
	}
	m.Trail = append(m.Trail, center)
}

// Bounds returns the rectangle the marker currently occupies.
func (m *Marker) Bounds() orb.Rect {
	return orb.Rect{
		Left:   m.Center.X - m.Radius,
		Top:    m.Center.Y - m.Radius,
		Width:  2 * m.Radius,
		Height: 2 * m.Radius,
	}
}

// Static discovers a fixed list of rectangles, creating fresh markers on
// every discovery.
type Static struct {
	Rects    []orb.Rect
	TrailLen int

	markers []*Marker
}

func NewStatic(rects []orb.Rect) *Static {
	return &Static{Rects: rects, TrailLen: defaultTrail}
}

func (s *Static) Discover() []sim.Element {
	s.markers = make([]*Marker, len(s.Rects))
	elems := make([]sim.Element, len(s.Rects))
	for i, r := range s.Rects {
		m := NewMarker(i, r, s.TrailLen)
		s.markers[i] = m
		elems[i] = sim.Element{Bounds: r, Handle: m}
	}
	return elems
}

// Markers returns the markers handed out by the last discovery.
func (s *Static) Markers() []*Marker { return s.markers }

// Scatter lays out n orbs of random radius inside the viewport on every
// discovery, so a resized viewport gets a fresh layout.
type Scatter struct {
	Count     int
	MinRadius float64
	MaxRadius float64
	View      sim.Viewport
	Rand      *rand.Rand
	TrailLen  int

	static Static
}

func NewScatter(n int, minR, maxR float64, view sim.Viewport, rng *rand.Rand) *Scatter {
	return &Scatter{
		Count:     n,
		MinRadius: minR,
		MaxRadius: maxR,
		View:      view,
		Rand:      rng,
		TrailLen:  defaultTrail,
	}
}

func (s *Scatter) Discover() []sim.Element {
	s.static.Rects = Layout(s.Count, s.MinRadius, s.MaxRadius, s.View.Extent(), s.Rand)
	s.static.TrailLen = s.TrailLen
	return s.static.Discover()
}

func (s *Scatter) Markers() []*Marker { return s.static.Markers() }

const layoutAttempts = 20

// Layout places n circles with radius in [minR, maxR] inside extent, trying
// a few times per circle to avoid overlapping the ones already placed.
// Circles that do not fit are shrunk to the viewport.
func Layout(n int, minR, maxR float64, extent orb.Vec2, rng *rand.Rand) []orb.Rect {
	if maxR < minR {
		minR, maxR = maxR, minR
	}
	rects := make([]orb.Rect, 0, n)
	for i := 0; i < n; i++ {
		r := minR + rng.Float64()*(maxR-minR)
		r = math.Min(r, math.Min(extent.X, extent.Y)/2)
		if r <= 0 {
			r = minR
		}

		var c orb.Vec2
		for attempt := 0; attempt < layoutAttempts; attempt++ {
			c = orb.Vec2{
				X: r + rng.Float64()*math.Max(extent.X-2*r, 0),
				Y: r + rng.Float64()*math.Max(extent.Y-2*r, 0),
			}
			if !overlapsAny(c, r, rects) {
				break
			}
		}
		rects = append(rects, orb.Rect{Left: c.X - r, Top: c.Y - r, Width: 2 * r, Height: 2 * r})
	}
	return rects
}

func overlapsAny(c orb.Vec2, r float64, rects []orb.Rect) bool {
	for _, o := range rects {
		if o.Center().Sub(c).Len() < o.Radius()+r {
			return true
		}
	}
	return false
}

// Viewport is a mutable extent updated by the host on resize.
type Viewport struct {
	Width, Height float64
}

func (v *Viewport) Extent() orb.Vec2 { return orb.Vec2{X: v.Width, Y: v.Height} }

func (v *Viewport) Resize(w, h float64) { v.Width, v.Height = w, h }
