package sim

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/orb"
)

type Simulation struct {
	cfg    Config
	source Source
	view   Viewport
	sched  Scheduler
	rng    *rand.Rand
	logger *log.Logger

	state   State
	bodies  []*orb.Body
	handles []Handle
	started time.Time
	last    time.Time
	pending TickID
	ticks   int
	elapsed time.Duration

	metrics   []Metric
	observers []Observer
}

type Option func(*Simulation)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRand overrides the velocity source seeded from Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

func New(src Source, view Viewport, sched Scheduler, cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:       cfg,
		source:    src,
		view:      view,
		sched:     sched,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		logger:    log.New(io.Discard),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) State() State { return s.state }
func (s *Simulation) Ticks() int   { return s.ticks }

// Bodies returns snapshots of the current bodies in discovery order.
func (s *Simulation) Bodies() []orb.Snapshot {
	out := make([]orb.Snapshot, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b.Snapshot()
	}
	return out
}

// Metrics returns the current value of every registered metric.
func (s *Simulation) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Start discovers the elements, gives every body a random velocity and
// requests the first tick.
func (s *Simulation) Start() error {
	if s.state == Running {
		return ErrAlreadyRunning
	}

	elems := s.source.Discover()
	if len(elems) == 0 {
		s.logger.Warn("no orb elements found")
	}

	s.bodies = make([]*orb.Body, 0, len(elems))
	s.handles = make([]Handle, 0, len(elems))
	for i, el := range elems {
		vel := orb.Vec2{
			X: (s.rng.Float64() - 0.5) * s.cfg.Speed,
			Y: (s.rng.Float64() - 0.5) * s.cfg.Speed,
		}
		b, err := orb.FromRect(el.Bounds, vel, s.cfg.Damping, s.cfg.Restitution)
		if err != nil {
			s.logger.Warn("skipping element", "index", i, "err", err)
			continue
		}
		s.bodies = append(s.bodies, b)
		s.handles = append(s.handles, el.Handle)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	now := s.sched.Now()
	s.started, s.last = now, now
	s.ticks = 0
	s.elapsed = 0
	s.state = Running
	s.schedule()

	s.logger.Debug("simulation started", "bodies", len(s.bodies))
	return nil
}

// Stop cancels the pending tick and drops the bodies. Stopping a stopped
// simulation does nothing.
func (s *Simulation) Stop() {
	if s.state == Stopped {
		return
	}
	s.sched.Cancel(s.pending)
	s.pending = 0
	s.last = time.Time{}
	s.state = Stopped
	s.bodies = nil
	s.handles = nil

	s.logger.Debug("simulation stopped", "ticks", s.ticks)
}

func (s *Simulation) schedule() {
	var id TickID
	id = s.sched.RequestTick(func(now time.Time) { s.onTick(id, now) })
	s.pending = id
}

func (s *Simulation) onTick(id TickID, now time.Time) {
	if s.state != Running || id != s.pending {
		return
	}
	s.pending = 0

	dt := s.frameDelta(now)
	s.last = now
	s.step(dt, now.Sub(s.started))

	if s.state == Running {
		s.schedule()
	}
}

// frameDelta converts wall time since the previous tick into nominal frames.
func (s *Simulation) frameDelta(now time.Time) float64 {
	dt := float64(now.Sub(s.last)) / float64(s.cfg.FrameInterval)
	if !(dt > 0) {
		return 0
	}
	if dt > s.cfg.MaxStep {
		return s.cfg.MaxStep
	}
	return dt
}

// Step runs one tick with an explicit step scale, bypassing the scheduler.
func (s *Simulation) Step(dt float64) Frame {
	if !(dt > 0) {
		dt = 0
	}
	return s.step(dt, s.elapsed+time.Duration(dt*float64(s.cfg.FrameInterval)))
}

func (s *Simulation) step(dt float64, elapsed time.Duration) Frame {
	extent := s.view.Extent()

	bounces := 0
	for _, b := range s.bodies {
		bounces += b.Integrate(dt, extent).Count()
	}

	// O(n²); fine for the handful of orbs this is meant for.
	collisions := 0
	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			if c, ok := s.bodies[i].DetectCollision(s.bodies[j]); ok {
				s.bodies[i].ResolveCollision(s.bodies[j], c)
				collisions++
			}
		}
	}

	for i, b := range s.bodies {
		b.Contain(extent)
		if h := s.handles[i]; h != nil {
			h.Place(b.Pos, b.Radius())
		}
	}

	s.ticks++
	s.elapsed = elapsed
	f := Frame{
		Tick:       s.ticks,
		Elapsed:    elapsed,
		Dt:         dt,
		Extent:     extent,
		Collisions: collisions,
		Bounces:    bounces,
	}
	if len(s.metrics) > 0 || len(s.observers) > 0 {
		f.Bodies = s.Bodies()
	}

	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnTick(f)
	}
	return f
}
