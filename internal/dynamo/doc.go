// Package dynamo holds the shared numeric types for scalar initial-value
// problems y' = f(y, t), y(t0) = y0.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Derivative]: the right-hand side f(y, t)
//   - [Func]: a single-argument function used by finite differences
//   - [StepResult]: the outcome of one adaptive step
//   - [Trajectory]: the (t, y) samples assembled by the driver
//   - [Integrator], [AdaptiveIntegrator]: single-step solvers
//
// # Example
//
//	f := func(y, t float64) float64 { return -2 * y }
//	integ := integrators.NewRK4()
//	ys, _ := sim.SolveFixed(ctx, integ, f, 1.0, dynamo.Span{T0: 0, Tf: 1}, 0.1)
//
// # Thread Safety
//
// Nothing here holds mutable state except [Trajectory], which belongs to a
// single integration run. Independent runs can proceed concurrently.
package dynamo
