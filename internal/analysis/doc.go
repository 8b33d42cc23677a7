// Package analysis turns recorded frames into series and summaries.
//
//   - [PowerSpectrum], [DominantFrequency]: spectrum of a per-frame series
//   - [GeneratePhasePortrait]: position against velocity for one body
//   - [Divergence], [GrowthRate]: separation of two nearly identical runs
//
// # Sensitivity
//
// Billiard-like systems separate quickly. A positive growth rate means two
// runs that started almost identically drift apart exponentially:
//
//	sep := analysis.Divergence(base, perturbed)
//	if analysis.GrowthRate(sep) > 0 {
//	    // sensitive to initial conditions
//	}
package analysis
