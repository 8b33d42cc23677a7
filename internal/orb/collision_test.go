package orb_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbsim/internal/orb"
)

var _ = Describe("Collision", func() {
	Describe("DetectCollision", func() {
		It("reports overlap from the receiver toward the other body", func() {
			a := mustBody(orb.Vec2{X: 0, Y: 0}, 10, 1, 1)
			b := mustBody(orb.Vec2{X: 6, Y: 8}, 5, 1, 1)

			c, ok := a.DetectCollision(b)

			Expect(ok).To(BeTrue())
			Expect(c.DX).To(Equal(6.0))
			Expect(c.DY).To(Equal(8.0))
			Expect(c.Distance).To(Equal(10.0))
			Expect(c.MinDistance).To(Equal(15.0))
			Expect(c.Overlap()).To(Equal(5.0))
		})

		It("ignores touching and distant bodies", func() {
			a := mustBody(orb.Vec2{X: 0, Y: 0}, 10, 1, 1)
			touching := mustBody(orb.Vec2{X: 20, Y: 0}, 10, 1, 1)
			far := mustBody(orb.Vec2{X: 100, Y: 0}, 10, 1, 1)

			_, ok := a.DetectCollision(touching)
			Expect(ok).To(BeFalse())
			_, ok = a.DetectCollision(far)
			Expect(ok).To(BeFalse())
			Expect(a.Pos).To(Equal(orb.Vec2{}))
		})
	})

	Describe("ResolveCollision", func() {
		It("swaps velocities of equal elastic bodies and separates them", func() {
			a := mustBody(orb.Vec2{X: 100, Y: 50}, 10, 1, 1)
			b := mustBody(orb.Vec2{X: 115, Y: 50}, 10, 1, 1)
			a.Vel = orb.Vec2{X: 1}
			b.Vel = orb.Vec2{X: -1}

			c, ok := a.DetectCollision(b)
			Expect(ok).To(BeTrue())
			a.ResolveCollision(b, c)

			Expect(a.Vel.X).To(BeNumerically("~", -1, 1e-12))
			Expect(b.Vel.X).To(BeNumerically("~", 1, 1e-12))
			Expect(a.Vel.Y).To(BeZero())
			Expect(b.Vel.Y).To(BeZero())
			Expect(b.Pos.Sub(a.Pos).Len()).To(BeNumerically("~", 20, 1e-12))
			Expect(a.Pos.X).To(Equal(97.5))
			Expect(b.Pos.X).To(Equal(117.5))
		})

		It("conserves momentum for unequal masses", func() {
			a := mustBody(orb.Vec2{X: 0, Y: 0}, 20, 1, 0.6)
			b := mustBody(orb.Vec2{X: 18, Y: 14}, 8, 1, 0.9)
			a.Vel = orb.Vec2{X: 2, Y: 1}
			b.Vel = orb.Vec2{X: -3, Y: -0.5}
			before := a.Momentum().Add(b.Momentum())

			c, ok := a.DetectCollision(b)
			Expect(ok).To(BeTrue())
			a.ResolveCollision(b, c)

			after := a.Momentum().Add(b.Momentum())
			Expect(after.X).To(BeNumerically("~", before.X, 1e-6))
			Expect(after.Y).To(BeNumerically("~", before.Y, 1e-6))
		})

		It("loses relative normal speed according to the smaller restitution", func() {
			a := mustBody(orb.Vec2{X: 0, Y: 0}, 10, 1, 0.5)
			b := mustBody(orb.Vec2{X: 19, Y: 0}, 10, 1, 0.9)
			a.Vel = orb.Vec2{X: 2}
			b.Vel = orb.Vec2{X: -2}

			c, _ := a.DetectCollision(b)
			a.ResolveCollision(b, c)

			rel := b.Vel.X - a.Vel.X
			Expect(rel).To(BeNumerically("~", 0.5*4, 1e-12))
		})

		It("corrects positions but keeps velocities of separating bodies", func() {
			a := mustBody(orb.Vec2{X: 0, Y: 0}, 10, 1, 1)
			b := mustBody(orb.Vec2{X: 16, Y: 0}, 10, 1, 1)
			a.Vel = orb.Vec2{X: -1, Y: 0.5}
			b.Vel = orb.Vec2{X: 1, Y: 0.25}

			c, ok := a.DetectCollision(b)
			Expect(ok).To(BeTrue())
			a.ResolveCollision(b, c)

			Expect(a.Vel).To(Equal(orb.Vec2{X: -1, Y: 0.5}))
			Expect(b.Vel).To(Equal(orb.Vec2{X: 1, Y: 0.25}))
			Expect(a.Pos).To(Equal(orb.Vec2{X: -2, Y: 0}))
			Expect(b.Pos).To(Equal(orb.Vec2{X: 18, Y: 0}))
		})

		It("separates coincident centers along +X without NaN", func() {
			a := mustBody(orb.Vec2{X: 50, Y: 50}, 10, 1, 1)
			b := mustBody(orb.Vec2{X: 50, Y: 50}, 10, 1, 1)
			a.Vel = orb.Vec2{X: 1, Y: 1}

			c, ok := a.DetectCollision(b)
			Expect(ok).To(BeTrue())
			Expect(c.Normal()).To(Equal(orb.Vec2{X: 1}))
			a.ResolveCollision(b, c)

			Expect(a.Pos).To(Equal(orb.Vec2{X: 40, Y: 50}))
			Expect(b.Pos).To(Equal(orb.Vec2{X: 60, Y: 50}))
			for _, v := range []orb.Vec2{a.Pos, a.Vel, b.Pos, b.Vel} {
				Expect(v.IsFinite()).To(BeTrue())
			}
			Expect(math.Abs(b.Vel.X)).To(BeNumerically(">", 0))
		})
	})
})
