package integrators

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// tableau is an explicit embedded Runge-Kutta scheme. high and low are the
// weights of the two solutions; high is the one that gets propagated.
type tableau struct {
	c    []float64
	a    [][]float64
	high []float64
	low  []float64
}

// embedded runs any tableau with error-per-step control.
//
// The new step is h·clamp(safety·(tol/err)^(1/p)) with p = 4 after a
// rejection and p = 5 after an acceptance. safety < 1 keeps the next
// attempt inside the tolerance rather than on its edge.
type embedded struct {
	tab      *tableau
	tol      float64
	safety   float64
	minScale float64
	maxScale float64
}

// maxStages is the largest stage count of any tableau here.
const maxStages = 7

func newEmbedded(tab *tableau, tol float64) *embedded {
	if tol <= 0 {
		tol = dynamo.DefaultAdaptiveTol
	}
	return &embedded{
		tab:      tab,
		tol:      tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (e *embedded) Tolerance() float64 { return e.tol }

func (e *embedded) Stages() int { return len(e.tab.c) }

func (e *embedded) Step(f dynamo.Derivative, y, t, h float64) (float64, error) {
	return e.StepAdaptive(f, y, t, h).Y, nil
}

// StepAdaptive takes one embedded step from (t, y). The step is accepted
// when |y_high - y_low| <= tol; either way H is the size to try next.
func (e *embedded) StepAdaptive(f dynamo.Derivative, y, t, h float64) dynamo.StepResult {
	tab := e.tab
	var buf [maxStages]float64
	k := buf[:len(tab.c)]

	for i := range tab.c {
		yi := y
		for j, aij := range tab.a[i] {
			yi += h * aij * k[j]
		}
		k[i] = f(yi, t+tab.c[i]*h)
	}

	yHigh, yLow := y, y
	for i := range k {
		yHigh += h * tab.high[i] * k[i]
		yLow += h * tab.low[i] * k[i]
	}

	errEst := math.Abs(yHigh - yLow)
	if !dynamo.IsFinite(errEst) {
		return dynamo.StepResult{Y: yHigh, H: h * e.minScale, Accepted: false, Err: math.Inf(1)}
	}

	errRatio := errEst / e.tol

	var scale float64
	switch {
	case errRatio > 1:
		scale = math.Max(e.minScale, e.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		scale = math.Min(e.maxScale, e.safety*math.Pow(errRatio, -0.2))
	default:
		scale = e.maxScale
	}

	return dynamo.StepResult{
		Y:        yHigh,
		H:        h * scale,
		Accepted: errEst <= e.tol,
		Err:      errEst,
	}
}
