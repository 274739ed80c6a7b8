// Package analysis measures how well a method solves a problem.
//
//   - [StudyOrder]: runs a fixed-step method at successively halved steps
//     and fits the empirical order of accuracy
//   - [ConvergenceOrder]: least-squares slope of log(error) against log(h)
//   - [WorkPrecision]: evaluations against final error for a sweep of
//     adaptive tolerances
//   - [Difference]: largest gap between two trajectories
//
// # Order of accuracy
//
// A method of order p has global error C·h^p, so halving h divides the
// error by 2^p:
//
//	points, p, err := analysis.StudyOrder(ctx, integrators.NewRK4(), f, exact, y0, span, 0.1, 5)
//	// p ≈ 4
package analysis
