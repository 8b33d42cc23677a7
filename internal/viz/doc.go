// Package viz is the Bubble Tea host for the orb simulation.
//
//   - [Model]: live view that sizes the viewport from the window and fires
//     the frame scheduler on every tick
//   - [NewInteractiveApp]: preset picker that launches the live view
//   - [Canvas]: braille canvas with 2x4 sub-pixels per cell
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart with a new layout
//	M     - Toggle reduced motion
//	L     - Toggle trails
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Window resizes are debounced; the simulation is rebuilt once the size
// has settled.
package viz
