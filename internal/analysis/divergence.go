package analysis

import (
	"math"

	"github.com/san-kum/orbsim/internal/sim"
)

// Divergence returns, per frame, the RMS distance between matching bodies
// of two runs. Extra frames or bodies in either run are ignored.
func Divergence(a, b []sim.Frame) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		m := min(len(a[i].Bodies), len(b[i].Bodies))
		if m == 0 {
			continue
		}
		sum := 0.0
		for j := 0; j < m; j++ {
			d := a[i].Bodies[j].Pos.Sub(b[i].Bodies[j].Pos)
			sum += d.Dot(d)
		}
		out[i] = math.Sqrt(sum / float64(m))
	}
	return out
}

// GrowthRate fits log(separation) against frame index by least squares and
// returns the slope, per frame. Zero separations are skipped.
func GrowthRate(separation []float64) float64 {
	var sx, sy, sxx, sxy float64
	n := 0.0
	for i, s := range separation {
		if !(s > 0) {
			continue
		}
		x, y := float64(i), math.Log(s)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
		n++
	}
	denom := n*sxx - sx*sx
	if n < 2 || denom == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / denom
}
