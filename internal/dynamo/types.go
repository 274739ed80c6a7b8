package dynamo

import (
	"fmt"
	"math"
)

const (
	// MinStep is the adaptive step-size floor. A recommended step below it
	// ends the integration.
	MinStep = 1e-6

	// DefaultRootTol bounds |Δy| between Newton iterates at convergence.
	DefaultRootTol = 1e-6

	// MaxNewtonIter caps the Newton-Raphson iteration count.
	MaxNewtonIter = 100

	// DefaultAdaptiveTol is the local error tolerance of the embedded methods.
	DefaultAdaptiveTol = 5e-3

	DefaultFDStep      = 1e-3
	DefaultCentralStep = 2e-3
)

// Derivative is the right-hand side f of y' = f(y, t). It must be pure.
type Derivative func(y, t float64) float64

// Func is a function of t only.
type Func func(t float64) float64

// Span is the closed integration interval [T0, Tf].
type Span struct {
	T0 float64
	Tf float64
}

func (s Span) Length() float64 { return s.Tf - s.T0 }

func (s Span) Validate() error {
	if math.IsNaN(s.T0) || math.IsNaN(s.Tf) || math.IsInf(s.T0, 0) || math.IsInf(s.Tf, 0) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidSpan, s.T0, s.Tf)
	}
	if s.Tf < s.T0 {
		return fmt.Errorf("%w: tf %g before t0 %g", ErrInvalidSpan, s.Tf, s.T0)
	}
	return nil
}

// StepResult is produced by adaptive methods. H is always the step size for
// the next attempt, whether or not this one was accepted. When Accepted is
// false, Y is the rejected candidate and must be discarded.
type StepResult struct {
	Y        float64
	H        float64
	Accepted bool
	Err      float64
}

// Trajectory is the ordered, append-only sequence of (t, y) samples.
type Trajectory struct {
	T []float64
	Y []float64
}

func NewTrajectory(capacity int) *Trajectory {
	if capacity < 0 {
		capacity = 0
	}
	return &Trajectory{
		T: make([]float64, 0, capacity),
		Y: make([]float64, 0, capacity),
	}
}

func (tr *Trajectory) Append(t, y float64) {
	tr.T = append(tr.T, t)
	tr.Y = append(tr.Y, y)
}

func (tr *Trajectory) Len() int { return len(tr.T) }

// Last returns the most recent sample. ok is false for an empty trajectory.
func (tr *Trajectory) Last() (t, y float64, ok bool) {
	n := len(tr.T)
	if n == 0 {
		return 0, 0, false
	}
	return tr.T[n-1], tr.Y[n-1], true
}

// IsValid reports whether every sample is finite.
func (tr *Trajectory) IsValid() bool {
	for _, v := range tr.Y {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Integrator advances y from t to t+h. Explicit methods never fail;
// implicit ones return the root finder's error.
type Integrator interface {
	Step(f Derivative, y, t, h float64) (float64, error)
}

// AdaptiveIntegrator performs one embedded step with error control.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(f Derivative, y, t, h float64) StepResult
}

// Observer is notified of every recorded sample.
type Observer interface {
	OnStep(t, y float64)
}

type Metric interface {
	Name() string
	Observe(t, y float64)
	Value() float64
	Reset()
}

// Equation is a named right-hand side with tunable parameters.
type Equation interface {
	Derive(y, t float64) float64
}

// Solvable equations know their closed-form solution through (t0, y0).
type Solvable interface {
	Solution(y0, t0 float64) Func
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
