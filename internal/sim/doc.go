// Package sim drives a set of [orb.Body] values through time.
//
// A [Simulation] discovers its bodies from a [Source] when started, then
// advances them once per host frame. The host clock is abstracted behind
// the [Scheduler] port: [FrameScheduler] is the concrete implementation
// every host uses, and paired with a [FakeClock] it runs ticks
// deterministically without real time passing.
//
// Per tick the simulation integrates every body, resolves every
// overlapping pair (i<j, in discovery order), pushes each position to the
// element's [Handle] and notifies observers and metrics.
//
// # Lifecycle
//
// A Simulation is either Stopped or Running. Reinitialisation (for
// example after a viewport resize) always goes through a [Controller],
// which stops the old instance before constructing and starting a new one.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. Hosts must call
// [FrameScheduler.Fire] and the Controller from a single goroutine.
package sim
