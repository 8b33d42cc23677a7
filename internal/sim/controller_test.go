package sim_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/orb"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/source"
)

var _ = Describe("Controller", func() {
	var (
		clock   *sim.FakeClock
		sched   *sim.FrameScheduler
		view    *source.Viewport
		src     *source.Static
		built   int
		factory sim.Factory
	)

	BeforeEach(func() {
		clock = sim.NewFakeClock(epoch)
		sched = sim.NewFrameScheduler(clock.Now)
		view = &source.Viewport{Width: 320, Height: 200}
		src = source.NewStatic([]orb.Rect{
			{Left: 10, Top: 10, Width: 20, Height: 20},
			{Left: 100, Top: 60, Width: 30, Height: 30},
		})
		built = 0
		factory = func() (*sim.Simulation, error) {
			built++
			cfg := sim.DefaultConfig()
			cfg.Seed = int64(built)
			return sim.New(src, view, sched, cfg)
		}
	})

	It("stops the old simulation before starting the new one", func() {
		c := sim.NewController(factory)
		Expect(c.Replace()).To(Succeed())
		first := c.Current()
		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 3)

		Expect(c.Replace()).To(Succeed())

		Expect(first.State()).To(Equal(sim.Stopped))
		Expect(c.Current()).NotTo(BeIdenticalTo(first))
		Expect(c.Current().State()).To(Equal(sim.Running))
		Expect(sched.Pending()).To(Equal(1))

		sim.RunFrames(clock, sched, sim.DefaultFrameInterval, 2)
		Expect(first.Ticks()).To(Equal(3))
		Expect(c.Current().Ticks()).To(Equal(2))
	})

	It("honours the motion gate", func() {
		allowed := false
		c := sim.NewController(factory, sim.WithMotionGate(func() bool { return allowed }))

		Expect(c.Replace()).To(Succeed())
		Expect(c.Current()).To(BeNil())
		Expect(built).To(BeZero())

		allowed = true
		Expect(c.Replace()).To(Succeed())
		Expect(c.Current()).NotTo(BeNil())
	})

	It("toggles reduced motion", func() {
		c := sim.NewController(factory)
		Expect(c.Replace()).To(Succeed())

		Expect(c.SetReducedMotion(true)).To(Succeed())
		Expect(c.ReducedMotion()).To(BeTrue())
		Expect(c.Current()).To(BeNil())
		Expect(sched.Pending()).To(BeZero())

		Expect(c.Replace()).To(Succeed())
		Expect(c.Current()).To(BeNil())

		Expect(c.SetReducedMotion(false)).To(Succeed())
		Expect(c.Current().State()).To(Equal(sim.Running))
	})

	It("debounces resizes", func() {
		c := sim.NewController(factory, sim.WithResizeDebounce(250*time.Millisecond))
		Expect(c.Replace()).To(Succeed())
		Expect(built).To(Equal(1))

		c.NoteResize(clock.Now())
		clock.Advance(100 * time.Millisecond)
		c.NoteResize(clock.Now())
		clock.Advance(200 * time.Millisecond)

		replaced, err := c.Poll(clock.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(replaced).To(BeFalse())

		clock.Advance(50 * time.Millisecond)
		replaced, err = c.Poll(clock.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(replaced).To(BeTrue())
		Expect(built).To(Equal(2))

		replaced, _ = c.Poll(clock.Now().Add(time.Hour))
		Expect(replaced).To(BeFalse())
	})

	It("reports factory errors and leaves nothing running", func() {
		boom := errors.New("boom")
		c := sim.NewController(func() (*sim.Simulation, error) { return nil, boom })

		Expect(c.Replace()).To(MatchError(boom))
		Expect(c.Current()).To(BeNil())
	})

	It("stops idempotently", func() {
		c := sim.NewController(factory)
		c.Stop()
		Expect(c.Replace()).To(Succeed())
		c.Stop()
		c.Stop()
		Expect(sched.Pending()).To(BeZero())
	})
})

var _ = Describe("FrameScheduler", func() {
	It("runs callbacks requested during a frame on the next frame", func() {
		clock := sim.NewFakeClock(epoch)
		sched := sim.NewFrameScheduler(clock.Now)

		var seen []time.Time
		var again func(time.Time)
		again = func(now time.Time) {
			seen = append(seen, now)
			sched.RequestTick(again)
		}
		sched.RequestTick(again)

		clock.Advance(time.Second)
		Expect(sched.Fire()).To(Equal(1))
		clock.Advance(time.Second)
		Expect(sched.Fire()).To(Equal(1))

		Expect(seen).To(Equal([]time.Time{epoch.Add(time.Second), epoch.Add(2 * time.Second)}))
	})

	It("never runs a cancelled callback", func() {
		sched := sim.NewFrameScheduler(nil)
		ran := false
		id := sched.RequestTick(func(time.Time) { ran = true })
		sched.Cancel(id)
		sched.Cancel(id)

		Expect(sched.Fire()).To(BeZero())
		Expect(ran).To(BeFalse())
	})
})
