package metrics

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// GlobalError tracks the largest |y - exact(t)| over a run.
type GlobalError struct {
	name    string
	exact   dynamo.Func
	maxErr  float64
	lastErr float64
	samples int
}

func NewGlobalError(exact dynamo.Func) *GlobalError {
	return &GlobalError{
		name:  "max_error",
		exact: exact,
	}
}

func (g *GlobalError) Name() string { return g.name }

func (g *GlobalError) Observe(t, y float64) {
	e := math.Abs(y - g.exact(t))
	if math.IsNaN(e) {
		e = math.Inf(1)
	}
	g.lastErr = e
	g.maxErr = math.Max(g.maxErr, e)
	g.samples++
}

func (g *GlobalError) Value() float64 {
	return g.maxErr
}

// Final is the error at the last observed sample.
func (g *GlobalError) Final() float64 {
	return g.lastErr
}

func (g *GlobalError) Reset() {
	g.maxErr = 0
	g.lastErr = 0
	g.samples = 0
}

// Range records the extremes of y.
type Range struct {
	min, max float64
	samples  int
}

func NewRange() *Range {
	return &Range{}
}

func (r *Range) Name() string { return "amplitude" }

func (r *Range) Observe(t, y float64) {
	if r.samples == 0 {
		r.min, r.max = y, y
	}
	r.min = math.Min(r.min, y)
	r.max = math.Max(r.max, y)
	r.samples++
}

// Value is max - min.
func (r *Range) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.max - r.min
}

func (r *Range) Bounds() (lo, hi float64) { return r.min, r.max }

func (r *Range) Reset() {
	r.min, r.max = 0, 0
	r.samples = 0
}
