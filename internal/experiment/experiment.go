// Package experiment runs simulations headlessly on a fake clock.
package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

// MarkerSource is a source whose handles are inspectable markers.
type MarkerSource interface {
	sim.Source
	Markers() []*source.Marker
}

// BuildSource returns the element source described by cfg: explicit
// rectangles when given, otherwise a scatter inside view drawn from seed.
func BuildSource(cfg *config.Config, view sim.Viewport, seed int64) MarkerSource {
	if len(cfg.Orbs.Rects) > 0 {
		s := source.NewStatic(cfg.Orbs.Rects)
		s.TrailLen = cfg.Host.TrailLength
		return s
	}
	rng := rand.New(rand.NewSource(seed + 1))
	s := source.NewScatter(cfg.Orbs.Count, cfg.Orbs.MinRadius, cfg.Orbs.MaxRadius, view, rng)
	s.TrailLen = cfg.Host.TrailLength
	return s
}

// Seeds hands out one seed per simulation instance. The first is the
// configured seed, so a single run reproduces; later instances draw from a
// generator seeded by it and never replay an earlier layout.
type Seeds struct {
	base int64
	used bool
	rng  *rand.Rand
}

func NewSeeds(seed int64) *Seeds {
	return &Seeds{base: seed, rng: rand.New(rand.NewSource(seed))}
}

func (s *Seeds) Next() int64 {
	if !s.used {
		s.used = true
		return s.base
	}
	for {
		if n := s.rng.Int63(); n != s.base {
			return n
		}
	}
}

// NewSimulation builds the source described by cfg and a simulation over
// it, both seeded from seed.
func NewSimulation(cfg *config.Config, view sim.Viewport, sched sim.Scheduler, seed int64, opts ...sim.Option) (MarkerSource, *sim.Simulation, error) {
	src := BuildSource(cfg, view, seed)
	sc := cfg.Sim()
	sc.Seed = seed
	s, err := sim.New(src, view, sched, sc, opts...)
	if err != nil {
		return nil, nil, err
	}
	return src, s, nil
}

type Result struct {
	Frames   []sim.Frame
	Metrics  map[string]float64
	Ticks    int
	Duration time.Duration
}

type Experiment struct {
	cfg    *config.Config
	logger *log.Logger

	clock  *sim.FakeClock
	sched  *sim.FrameScheduler
	view   *source.Viewport
	source MarkerSource
	sim    *sim.Simulation

	frames []sim.Frame
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:    cfg,
		logger: log.New(io.Discard),
		clock:  sim.NewFakeClock(time.Unix(0, 0)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = sim.NewFrameScheduler(e.clock.Now)
	e.view = &source.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	return e
}

func (e *Experiment) Setup(metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	src, s, err := NewSimulation(e.cfg, e.view, e.sched, e.cfg.Run.Seed, sim.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.source = src
	for _, m := range metrics {
		s.AddMetric(m)
	}
	s.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
		e.frames = append(e.frames, f)
	}))
	e.sim = s
	return nil
}

// Run starts the simulation and fires cfg.Run.Frames frames, one frame
// interval apart, then stops it.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.sim == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.frames = make([]sim.Frame, 0, e.cfg.Run.Frames)

	if err := e.sim.Start(); err != nil {
		return nil, err
	}
	defer e.sim.Stop()

	interval := e.cfg.FrameInterval()
	for i := 0; i < e.cfg.Run.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sim.RunFrames(e.clock, e.sched, interval, 1)
	}

	res := &Result{
		Frames:   e.frames,
		Metrics:  e.sim.Metrics(),
		Ticks:    e.sim.Ticks(),
		Duration: time.Duration(e.cfg.Run.Frames) * interval,
	}
	e.logger.Info("run finished", "frames", res.Ticks, "bodies", len(e.sim.Bodies()))
	return res, nil
}

func (e *Experiment) Simulation() *sim.Simulation { return e.sim }

func (e *Experiment) Markers() []*source.Marker { return e.source.Markers() }

// Resize changes the viewport seen by subsequent ticks.
func (e *Experiment) Resize(w, h float64) { e.view.Resize(w, h) }
