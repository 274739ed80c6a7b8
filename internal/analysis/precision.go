package analysis

import (
	"context"
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/sim"
)

// PrecisionPoint is the cost and accuracy of one adaptive run.
type PrecisionPoint struct {
	Tolerance   float64
	Evaluations int
	Accepted    int
	Rejected    int
	Error       float64
	Aborted     bool
}

// WorkPrecision runs an adaptive method once per tolerance. build must
// return a fresh integrator for the given tolerance. The error is measured
// at the last recorded sample.
func WorkPrecision(ctx context.Context, build func(tol float64) dynamo.AdaptiveIntegrator, f dynamo.Derivative, exact dynamo.Func, y0 float64, span dynamo.Span, h0 float64, tolerances []float64) ([]PrecisionPoint, error) {
	points := make([]PrecisionPoint, 0, len(tolerances))

	for _, tol := range tolerances {
		cfg := sim.Config{Span: span, H: h0, Adaptive: true}
		result, err := sim.New(build(tol)).Run(ctx, f, y0, cfg)
		if err != nil {
			return points, err
		}

		p := PrecisionPoint{
			Tolerance:   tol,
			Evaluations: result.Evaluations,
			Accepted:    result.Accepted,
			Rejected:    result.Rejected,
			Aborted:     result.Aborted,
			Error:       math.NaN(),
		}
		if t, y, ok := result.Final(); ok {
			p.Error = math.Abs(y - exact(t))
		}
		points = append(points, p)
	}

	return points, nil
}
