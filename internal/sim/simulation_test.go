package sim_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type countingMetric struct {
	frames     int
	collisions int
	resets     int
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(f sim.Frame) {
	m.frames++
	m.collisions += f.Collisions
}
func (m *countingMetric) Value() float64 { return float64(m.frames) }
func (m *countingMetric) Reset() {
	m.frames, m.collisions = 0, 0
	m.resets++
}

var _ = Describe("Simulation", func() {
	var (
		clock *sim.FakeClock
		sched *sim.FrameScheduler
		view  *source.Viewport
		src   *source.Static
		cfg   sim.Config
	)

	BeforeEach(func() {
		clock = sim.NewFakeClock(epoch)
		sched = sim.NewFrameScheduler(clock.Now)
		view = &source.Viewport{Width: 800, Height: 600}
		src = source.NewStatic([]orb.Rect{
			{Left: 10, Top: 10, Width: 40, Height: 40},
			{Left: 200, Top: 200, Width: 60, Height: 60},
			{Left: 500, Top: 100, Width: 30, Height: 30},
			{Left: 400, Top: 400, Width: 80, Height: 80},
		})
		cfg = sim.DefaultConfig()
		cfg.Seed = 11
	})

	newSim := func(opts ...sim.Option) *sim.Simulation {
		s, err := sim.New(src, view, sched, cfg, opts...)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("rejects invalid configuration", func() {
		bad := cfg
		bad.FrameInterval = 0
		_, err := sim.New(src, view, sched, bad)
		Expect(err).To(MatchError(sim.ErrInvalidConfig))

		bad = cfg
		bad.Damping = 0
		_, err = sim.New(src, view, sched, bad)
		Expect(err).To(MatchError(sim.ErrInvalidConfig))
	})

	It("starts with one body per element and requests a tick", func() {
		s := newSim()
		Expect(s.State()).To(Equal(sim.Stopped))

		Expect(s.Start()).To(Succeed())

		Expect(s.State()).To(Equal(sim.Running))
		Expect(s.Bodies()).To(HaveLen(4))
		Expect(sched.Pending()).To(Equal(1))
		for _, b := range s.Bodies() {
			Expect(math.Abs(b.Vel.X)).To(BeNumerically("<=", cfg.Speed/2))
			Expect(math.Abs(b.Vel.Y)).To(BeNumerically("<=", cfg.Speed/2))
			Expect(b.Mass).To(Equal(math.Pi * b.Radius * b.Radius))
		}
	})

	It("refuses to start twice", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())
		Expect(s.Start()).To(MatchError(sim.ErrAlreadyRunning))
		Expect(sched.Pending()).To(Equal(1))
	})

	It("ticks once per frame and keeps bodies inside the viewport", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())

		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 500)

		Expect(s.Ticks()).To(Equal(500))
		for _, b := range s.Bodies() {
			Expect(b.Pos.X).To(BeNumerically(">=", b.Radius))
			Expect(b.Pos.X).To(BeNumerically("<=", 800-b.Radius))
			Expect(b.Pos.Y).To(BeNumerically(">=", b.Radius))
			Expect(b.Pos.Y).To(BeNumerically("<=", 600-b.Radius))
		}
	})

	It("pushes positions to the element handles", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 3)

		bodies := s.Bodies()
		for i, m := range src.Markers() {
			Expect(m.Center).To(Equal(bodies[i].Pos))
			Expect(m.Trail).To(HaveLen(3))
		}
	})

	It("normalises and clamps dt to the nominal frame", func() {
		var frames []sim.Frame
		s := newSim()
		s.AddObserver(sim.ObserverFunc(func(f sim.Frame) { frames = append(frames, f) }))
		Expect(s.Start()).To(Succeed())

		clock.Advance(sim.DefaultFrameInterval / 2)
		sched.Fire()
		clock.Advance(10 * time.Second)
		sched.Fire()
		sched.Fire()

		Expect(frames).To(HaveLen(3))
		Expect(frames[0].Dt).To(BeNumerically("~", 0.5, 1e-9))
		Expect(frames[1].Dt).To(Equal(sim.DefaultMaxStep))
		Expect(frames[2].Dt).To(BeZero())
		Expect(frames[1].Elapsed).To(Equal(sim.DefaultFrameInterval/2 + 10*time.Second))
	})

	It("resolves overlapping pairs within the tick", func() {
		src.Rects = []orb.Rect{
			{Left: 100, Top: 100, Width: 20, Height: 20},
			{Left: 105, Top: 100, Width: 20, Height: 20},
		}
		cfg.Speed = 0
		s := newSim()
		Expect(s.Start()).To(Succeed())

		f := s.Step(1)

		Expect(f.Collisions).To(Equal(1))
		bodies := s.Bodies()
		Expect(bodies[1].Pos.Sub(bodies[0].Pos).Len()).To(BeNumerically("~", 20, 1e-9))
	})

	It("treats NaN and negative step scales as zero", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())
		before := s.Bodies()

		for _, dt := range []float64{math.NaN(), -2} {
			f := s.Step(dt)
			Expect(f.Dt).To(BeZero())
			Expect(f.Elapsed).To(BeZero())
		}
		for i, b := range s.Bodies() {
			Expect(b.Pos).To(Equal(before[i].Pos))
		}
	})

	It("cancels the pending tick on stop", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 2)

		s.Stop()

		Expect(s.State()).To(Equal(sim.Stopped))
		Expect(sched.Pending()).To(BeZero())
		Expect(s.Bodies()).To(BeEmpty())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 5)
		Expect(s.Ticks()).To(Equal(2))

		s.Stop()
		Expect(s.State()).To(Equal(sim.Stopped))
	})

	It("does nothing when stopped from another callback in the same frame", func() {
		s := newSim()
		var stopper sim.TickID
		stopper = sched.RequestTick(func(time.Time) { s.Stop() })
		Expect(stopper).NotTo(BeZero())
		Expect(s.Start()).To(Succeed())

		clock.Advance(sim.DefaultFrameInterval)
		Expect(sched.Fire()).To(Equal(1))
		Expect(s.Ticks()).To(BeZero())
	})

	It("stops cleanly from an observer", func() {
		s := newSim()
		s.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
			if f.Tick == 3 {
				s.Stop()
			}
		}))
		Expect(s.Start()).To(Succeed())

		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 10)

		Expect(s.Ticks()).To(Equal(3))
		Expect(sched.Pending()).To(BeZero())
	})

	It("runs a no-op loop without elements", func() {
		src.Rects = nil
		s := newSim()
		Expect(s.Start()).To(Succeed())

		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 4)
		Expect(s.Ticks()).To(Equal(4))
		Expect(s.Bodies()).To(BeEmpty())

		s.Stop()
		Expect(sched.Pending()).To(BeZero())
	})

	It("skips empty elements", func() {
		src.Rects = append(src.Rects, orb.Rect{Left: 5, Top: 5})
		s := newSim()
		Expect(s.Start()).To(Succeed())
		Expect(s.Bodies()).To(HaveLen(4))
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 2)
	})

	It("stays finite in a degenerate viewport", func() {
		view.Resize(10, 0)
		s := newSim()
		Expect(s.Start()).To(Succeed())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 20)

		for _, b := range s.Bodies() {
			Expect(b.Pos.IsFinite()).To(BeTrue())
			Expect(b.Vel.IsFinite()).To(BeTrue())
		}
	})

	It("starts over with fresh bodies after stop", func() {
		s := newSim()
		Expect(s.Start()).To(Succeed())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 50)
		first := s.Bodies()

		s.Stop()
		Expect(s.Start()).To(Succeed())
		second := s.Bodies()

		Expect(s.Ticks()).To(BeZero())
		Expect(second).To(HaveLen(len(first)))
		for i := range second {
			Expect(second[i].Pos).To(Equal(src.Rects[i].Center()))
			Expect(second[i].Vel).NotTo(Equal(first[i].Vel))
		}
	})

	It("resets and feeds metrics", func() {
		m := &countingMetric{}
		s := newSim()
		s.AddMetric(m)
		Expect(s.Start()).To(Succeed())
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 7)

		Expect(s.Metrics()).To(HaveKeyWithValue("count", 7.0))

		s.Stop()
		Expect(s.Start()).To(Succeed())
		Expect(m.resets).To(Equal(2))
		Expect(m.frames).To(BeZero())
	})
})
