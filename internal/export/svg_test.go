package export

import (
	"strings"
	"testing"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/viz"
)

func twoBodies(x float64) sim.Frame {
	return sim.Frame{
		Extent: orb.Vec2{X: 200, Y: 100},
		Bodies: []orb.Snapshot{
			{Pos: orb.Vec2{X: x, Y: 50}, Radius: 10},
			{Pos: orb.Vec2{X: 150, Y: x}, Radius: 5},
		},
	}
}

func TestFrameToSVG(t *testing.T) {
	svg := FrameToSVG(twoBodies(20), []string{"#111111"})

	if !strings.Contains(svg, `viewBox="0 0 200 100"`) {
		t.Error("expected viewport-sized viewBox")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="20.0" cy="50.0" r="10.0" fill="#111111"`) {
		t.Errorf("missing first body in %s", svg)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("svg not closed")
	}
}

func TestTrajectoriesToSVG(t *testing.T) {
	if TrajectoriesToSVG(nil, nil) != "" {
		t.Error("expected empty output for no frames")
	}

	svg := TrajectoriesToSVG([]sim.Frame{twoBodies(20), twoBodies(30), twoBodies(40)}, nil)
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if !strings.Contains(svg, "M20.0,50.0 L30.0,50.0 L40.0,50.0") {
		t.Errorf("unexpected path in %s", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected final positions drawn, got %d circles", n)
	}

	empty := TrajectoriesToSVG([]sim.Frame{{Extent: orb.Vec2{X: 10, Y: 10}}}, nil)
	if !strings.HasSuffix(empty, "</svg>") || strings.Contains(empty, "<circle") {
		t.Errorf("unexpected svg for bodiless frame: %s", empty)
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="1.0" cy="1.0"`) || !strings.Contains(svg, `cx="7.0" cy="7.0"`) {
		t.Errorf("unexpected dot positions: %s", svg)
	}
}
