package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/source"
)

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Orbs.Count = 6
	cfg.Run.Frames = 120
	cfg.Run.Seed = 3

	ms, err := NewRegistry().Metrics()
	if err != nil {
		t.Fatal(err)
	}

	exp := New(cfg)
	if err := exp.Setup(ms); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Ticks != 120 || len(res.Frames) != 120 {
		t.Errorf("expected 120 frames, got ticks=%d frames=%d", res.Ticks, len(res.Frames))
	}
	if res.Metrics["containment"] != 1 {
		t.Errorf("expected full containment, got %f", res.Metrics["containment"])
	}
	if res.Metrics["energy_decay"] > 1 {
		t.Errorf("energy grew: %f", res.Metrics["energy_decay"])
	}
	for _, f := range res.Frames {
		if len(f.Bodies) != 6 {
			t.Fatalf("frame %d has %d bodies", f.Tick, len(f.Bodies))
		}
	}
	if exp.Simulation().Ticks() != 120 {
		t.Errorf("simulation ticks %d", exp.Simulation().Ticks())
	}
}

func TestExperimentDeterministic(t *testing.T) {
	run := func() []orb.Snapshot {
		cfg := config.DefaultConfig()
		cfg.Run.Frames = 50
		cfg.Run.Seed = 11
		exp := New(cfg)
		if err := exp.Setup(nil); err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res.Frames[len(res.Frames)-1].Bodies
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Vel != b[i].Vel {
			t.Fatalf("body %d diverged between identical runs", i)
		}
	}
}

func TestExperimentNotSetup(t *testing.T) {
	if _, err := New(config.DefaultConfig()).Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestExperimentCancelled(t *testing.T) {
	exp := New(config.DefaultConfig())
	if err := exp.Setup(nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildSource(t *testing.T) {
	view := &source.Viewport{Width: 400, Height: 300}

	cfg := config.DefaultConfig()
	cfg.Orbs.Rects = []orb.Rect{{Left: 0, Top: 0, Width: 20, Height: 20}}
	if _, ok := BuildSource(cfg, view, 1).(*source.Static); !ok {
		t.Error("expected static source for explicit rects")
	}

	cfg.Orbs.Rects = nil
	src := BuildSource(cfg, view, 1)
	if _, ok := src.(*source.Scatter); !ok {
		t.Error("expected scatter source")
	}
	if n := len(src.Discover()); n != cfg.Orbs.Count {
		t.Errorf("expected %d elements, got %d", cfg.Orbs.Count, n)
	}
	if len(src.Markers()) != cfg.Orbs.Count {
		t.Error("markers not recorded")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.GetMetric("nonexistent"); err == nil {
		t.Error("expected error for unknown metric")
	}
	ms, err := r.Metrics("collisions", "bounces")
	if err != nil || len(ms) != 2 {
		t.Fatalf("unexpected metrics %v %v", ms, err)
	}
	if len(r.ListMetrics()) != 6 {
		t.Errorf("expected 6 metrics, got %v", r.ListMetrics())
	}
}

func TestSeeds(t *testing.T) {
	a, b := NewSeeds(42), NewSeeds(42)
	if s := a.Next(); s != 42 {
		t.Fatalf("first seed should be the configured one, got %d", s)
	}
	b.Next()

	seen := map[int64]bool{42: true}
	for i := 0; i < 5; i++ {
		s := a.Next()
		if seen[s] {
			t.Errorf("seed %d handed out twice", s)
		}
		seen[s] = true
		if bs := b.Next(); bs != s {
			t.Errorf("sequence not deterministic: %d != %d", s, bs)
		}
	}
}
