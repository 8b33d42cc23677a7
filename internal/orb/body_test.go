package orb_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/orb"
)

func mustBody(pos orb.Vec2, radius, damping, restitution float64) *orb.Body {
	b, err := orb.New(pos, radius, damping, restitution)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Body", func() {
	Describe("construction", func() {
		It("derives mass from area", func() {
			r := 7.0
			b := mustBody(orb.Vec2{X: 50, Y: 50}, r, orb.DefaultDamping, orb.DefaultRestitution)
			Expect(b.Mass()).To(Equal(math.Pi * r * r))
			Expect(b.Radius()).To(Equal(7.0))
		})

		DescribeTable("rejects out of range coefficients",
			func(radius, damping, restitution float64) {
				_, err := orb.New(orb.Vec2{}, radius, damping, restitution)
				Expect(err).To(MatchError(orb.ErrParameterBounds))
			},
			Entry("zero radius", 0.0, 0.98, 0.85),
			Entry("negative radius", -1.0, 0.98, 0.85),
			Entry("NaN radius", math.NaN(), 0.98, 0.85),
			Entry("zero damping", 5.0, 0.0, 0.85),
			Entry("damping above one", 5.0, 1.01, 0.85),
			Entry("negative restitution", 5.0, 0.98, -0.1),
			Entry("restitution above one", 5.0, 0.98, 1.5),
		)

		It("builds from a bounding rectangle", func() {
			b, err := orb.FromRect(orb.Rect{Left: 10, Top: 20, Width: 40, Height: 30}, orb.Vec2{X: 1, Y: -1}, 0.98, 0.85)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Radius()).To(Equal(20.0))
			Expect(b.Pos).To(Equal(orb.Vec2{X: 30, Y: 40}))
			Expect(b.Vel).To(Equal(orb.Vec2{X: 1, Y: -1}))
		})

		It("refuses an empty rectangle", func() {
			_, err := orb.FromRect(orb.Rect{Left: 10, Top: 10}, orb.Vec2{}, 0.98, 0.85)
			Expect(err).To(MatchError(orb.ErrEmptyRect))
		})
	})

	Describe("Integrate", func() {
		extent := orb.Vec2{X: 800, Y: 600}

		It("moves before damping", func() {
			b := mustBody(orb.Vec2{X: 100, Y: 100}, 10, 0.5, 1)
			b.Vel = orb.Vec2{X: 4, Y: -2}

			hit := b.Integrate(1, extent)

			Expect(hit).To(BeZero())
			Expect(b.Pos).To(Equal(orb.Vec2{X: 104, Y: 98}))
			Expect(b.Vel).To(Equal(orb.Vec2{X: 2, Y: -1}))
		})

		It("reflects off the left wall with restitution after damping", func() {
			r := 12.0
			b := mustBody(orb.Vec2{X: r, Y: 300}, r, orb.DefaultDamping, 0.85)
			b.Vel = orb.Vec2{X: -2}

			hit := b.Integrate(1, extent)

			Expect(hit).To(Equal(orb.BounceX))
			Expect(b.Pos.X).To(Equal(r))
			Expect(b.Vel.X).To(BeNumerically(">", 0))
			Expect(b.Vel.X).To(BeNumerically("~", 2*orb.DefaultDamping*0.85, 1e-12))
		})

		It("reflects off the far walls inward", func() {
			b := mustBody(orb.Vec2{X: 795, Y: 595}, 10, 1, 0.5)
			b.Vel = orb.Vec2{X: 3, Y: 4}

			hit := b.Integrate(1, extent)

			Expect(hit).To(Equal(orb.BounceX | orb.BounceY))
			Expect(hit.Count()).To(Equal(2))
			Expect(b.Pos).To(Equal(orb.Vec2{X: 790, Y: 590}))
			Expect(b.Vel).To(Equal(orb.Vec2{X: -1.5, Y: -2}))
		})

		It("never increases speed on a wall bounce", func() {
			b := mustBody(orb.Vec2{X: 15, Y: 300}, 10, 1, 0.7)
			b.Vel = orb.Vec2{X: -9}
			before := math.Abs(b.Vel.X)

			b.Integrate(1, extent)

			Expect(math.Abs(b.Vel.X)).To(BeNumerically("<=", before))
		})

		It("treats negative and NaN steps as zero", func() {
			b := mustBody(orb.Vec2{X: 100, Y: 100}, 10, 1, 1)
			b.Vel = orb.Vec2{X: 5, Y: 5}

			b.Integrate(-3, extent)
			b.Integrate(math.NaN(), extent)

			Expect(b.Pos).To(Equal(orb.Vec2{X: 100, Y: 100}))
		})

		It("parks a body in the middle of a degenerate viewport", func() {
			b := mustBody(orb.Vec2{X: 5, Y: 5}, 20, 1, 1)
			b.Vel = orb.Vec2{X: 3, Y: 3}

			hit := b.Integrate(1, orb.Vec2{X: 30, Y: 0})

			Expect(hit).To(Equal(orb.BounceX | orb.BounceY))
			Expect(b.Pos).To(Equal(orb.Vec2{X: 15, Y: 0}))
			Expect(b.Vel).To(Equal(orb.Vec2{}))
			Expect(b.Pos.IsFinite()).To(BeTrue())
		})

		It("keeps random bodies inside the viewport", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 50; i++ {
				r := 5 + rng.Float64()*40
				b := mustBody(orb.Vec2{X: r + rng.Float64()*(800-2*r), Y: r + rng.Float64()*(600-2*r)}, r, orb.DefaultDamping, orb.DefaultRestitution)
				b.Vel = orb.Vec2{X: (rng.Float64() - 0.5) * 200, Y: (rng.Float64() - 0.5) * 200}

				for step := 0; step < 200; step++ {
					b.Integrate(rng.Float64()*2, extent)
					Expect(b.Pos.X).To(BeNumerically(">=", r))
					Expect(b.Pos.X).To(BeNumerically("<=", 800-r))
					Expect(b.Pos.Y).To(BeNumerically(">=", r))
					Expect(b.Pos.Y).To(BeNumerically("<=", 600-r))
				}
				Expect(b.Mass()).To(Equal(math.Pi * r * r))
				Expect(b.Damping()).To(Equal(orb.DefaultDamping))
				Expect(b.Restitution()).To(Equal(orb.DefaultRestitution))
			}
		})
	})

	Describe("Contain", func() {
		It("clamps position and leaves velocity alone", func() {
			b := mustBody(orb.Vec2{X: -5, Y: 700}, 10, 1, 1)
			b.Vel = orb.Vec2{X: -1, Y: 2}

			b.Contain(orb.Vec2{X: 800, Y: 600})

			Expect(b.Pos).To(Equal(orb.Vec2{X: 10, Y: 590}))
			Expect(b.Vel).To(Equal(orb.Vec2{X: -1, Y: 2}))

			b.Contain(orb.Vec2{X: 12, Y: 600})
			Expect(b.Pos.X).To(Equal(6.0))
		})
	})

	Describe("energy helpers", func() {
		It("reports kinetic energy and momentum", func() {
			b := mustBody(orb.Vec2{}, 1, 1, 1)
			b.Vel = orb.Vec2{X: 3, Y: 4}

			Expect(b.KineticEnergy()).To(BeNumerically("~", 0.5*math.Pi*25, 1e-9))
			p := b.Momentum()
			Expect(p.X).To(BeNumerically("~", 3*math.Pi, 1e-12))
			Expect(p.Y).To(BeNumerically("~", 4*math.Pi, 1e-12))

			snap := b.Snapshot()
			Expect(snap.Radius).To(Equal(1.0))
			Expect(snap.Vel).To(Equal(b.Vel))
		})
	})
})
