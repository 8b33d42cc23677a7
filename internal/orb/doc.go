// Package orb implements the circular rigid bodies of the simulation.
//
// A [Body] owns one orb's physical state and knows how to advance itself
// by one step, reflect off the viewport walls and resolve a contact with
// another body:
//
//   - [Body.Integrate]: explicit Euler step, damping and wall reflection
//   - [Body.DetectCollision]: circle overlap test returning a [Collision]
//   - [Body.ResolveCollision]: positional correction plus normal impulse
//
// Mass is area proportional (π·r²) and, like radius, damping and
// restitution, fixed for the lifetime of the body.
//
// # Example
//
//	a, _ := orb.New(orb.Vec2{X: 100, Y: 100}, 20, orb.DefaultDamping, orb.DefaultRestitution)
//	b, _ := orb.New(orb.Vec2{X: 130, Y: 100}, 20, orb.DefaultDamping, orb.DefaultRestitution)
//	if c, ok := a.DetectCollision(b); ok {
//	    a.ResolveCollision(b, c)
//	}
//
// Bodies are not safe for concurrent use.
package orb
