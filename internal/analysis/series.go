package analysis

import "github.com/san-kum/orbsim/internal/sim"

// EnergySeries returns the total kinetic energy of every frame.
func EnergySeries(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		for _, b := range f.Bodies {
			out[i] += 0.5 * b.Mass * b.Vel.Dot(b.Vel)
		}
	}
	return out
}

// CollisionSeries returns the orb-orb contact count of every frame.
func CollisionSeries(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f.Collisions)
	}
	return out
}

// BounceSeries returns the wall reflection count of every frame.
func BounceSeries(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f.Bounces)
	}
	return out
}

// BodySeries returns one component of one body for every frame: "x", "y",
// "vx", "vy" or "speed". Frames missing the body contribute zero.
func BodySeries(frames []sim.Frame, body int, component string) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		if body < 0 || body >= len(f.Bodies) {
			continue
		}
		b := f.Bodies[body]
		switch component {
		case "x":
			out[i] = b.Pos.X
		case "y":
			out[i] = b.Pos.Y
		case "vx":
			out[i] = b.Vel.X
		case "vy":
			out[i] = b.Vel.Y
		case "speed":
			out[i] = b.Vel.Len()
		}
	}
	return out
}

// Series picks a named per-frame series: energy, collisions, bounces, or a
// body component via BodySeries.
func Series(frames []sim.Frame, name string, body int) []float64 {
	switch name {
	case "energy":
		return EnergySeries(frames)
	case "collisions":
		return CollisionSeries(frames)
	case "bounces":
		return BounceSeries(frames)
	default:
		return BodySeries(frames, body, name)
	}
}
