package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/sim"
)

var ErrTooFewPoints = errors.New("analysis: need at least two usable points")

// OrderPoint is one refinement level of an order study.
type OrderPoint struct {
	H           float64
	Error       float64
	Evaluations int
}

// FinalError runs a fixed-step integration and returns |y_N - exact(tf)|.
func FinalError(ctx context.Context, integ dynamo.Integrator, f dynamo.Derivative, exact dynamo.Func, y0 float64, span dynamo.Span, h float64) (OrderPoint, error) {
	result, err := sim.New(integ).Run(ctx, f, y0, sim.Config{Span: span, H: h})
	if err != nil {
		return OrderPoint{}, err
	}
	t, y, ok := result.Final()
	if !ok {
		return OrderPoint{}, fmt.Errorf("analysis: run at h=%g produced no samples", h)
	}
	return OrderPoint{
		H:           h,
		Error:       math.Abs(y - exact(t)),
		Evaluations: result.Evaluations,
	}, nil
}

// StudyOrder evaluates the final error at h0, h0/2, ..., h0/2^(levels-1)
// and fits the order of accuracy to those points.
func StudyOrder(ctx context.Context, integ dynamo.Integrator, f dynamo.Derivative, exact dynamo.Func, y0 float64, span dynamo.Span, h0 float64, levels int) ([]OrderPoint, float64, error) {
	if levels < 2 {
		return nil, 0, ErrTooFewPoints
	}

	points := make([]OrderPoint, 0, levels)
	h := h0
	for i := 0; i < levels; i++ {
		p, err := FinalError(ctx, integ, f, exact, y0, span, h)
		if err != nil {
			return points, 0, err
		}
		points = append(points, p)
		h /= 2
	}

	hs := make([]float64, len(points))
	errs := make([]float64, len(points))
	for i, p := range points {
		hs[i], errs[i] = p.H, p.Error
	}

	order, err := ConvergenceOrder(hs, errs)
	return points, order, err
}

// ConvergenceOrder fits log(err) = p·log(h) + c by least squares and
// returns p. Points with a zero or non-finite error are skipped since
// they carry no slope information.
func ConvergenceOrder(hs, errs []float64) (float64, error) {
	if len(hs) != len(errs) {
		return 0, fmt.Errorf("analysis: %d steps but %d errors", len(hs), len(errs))
	}

	var xs, ys []float64
	for i := range hs {
		if hs[i] <= 0 || errs[i] <= 0 || !dynamo.IsFinite(errs[i]) {
			continue
		}
		xs = append(xs, math.Log(hs[i]))
		ys = append(ys, math.Log(errs[i]))
	}
	if len(xs) < 2 {
		return 0, ErrTooFewPoints
	}

	slope, ok := fitSlope(xs, ys)
	if !ok {
		return 0, ErrTooFewPoints
	}
	return slope, nil
}

func fitSlope(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, false
	}
	return sxy / sxx, true
}
