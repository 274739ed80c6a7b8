package sim

import (
	"fmt"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

type Config struct {
	Span     dynamo.Span
	H        float64
	Adaptive bool

	// ValidateState stops a fixed-step run at the first non-finite y.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Span:          dynamo.Span{T0: 0, Tf: 1},
		H:             0.01,
		Adaptive:      false,
		ValidateState: true,
	}
}

// Result is one integration run. Times and States have equal length.
type Result struct {
	Times       []float64
	States      []float64
	Accepted    int
	Rejected    int
	Evaluations int

	// Aborted is set when an adaptive run stopped because the recommended
	// step fell below dynamo.MinStep or an accepted step no longer moved t.
	Aborted bool
	Metrics map[string]float64
}

// Trajectory views the samples as a dynamo.Trajectory without copying.
func (r *Result) Trajectory() *dynamo.Trajectory {
	return &dynamo.Trajectory{T: r.Times, Y: r.States}
}

func (r *Result) Final() (t, y float64, ok bool) {
	return r.Trajectory().Last()
}

// CountingDerivative counts evaluations of the wrapped right-hand side.
type CountingDerivative struct {
	F     dynamo.Derivative
	Calls int
}

func (c *CountingDerivative) Derive(y, t float64) float64 {
	c.Calls++
	return c.F(y, t)
}

func validateConfig(f dynamo.Derivative, cfg Config) error {
	if f == nil {
		return dynamo.ErrNilDerivative
	}
	if cfg.H <= 0 || !dynamo.IsFinite(cfg.H) {
		return fmt.Errorf("%w, got %g", dynamo.ErrInvalidStep, cfg.H)
	}
	if err := cfg.Span.Validate(); err != nil {
		return err
	}
	if !cfg.Adaptive {
		if n := GridPoints(cfg.Span.T0, cfg.Span.Tf, cfg.H); n > MaxGridPoints {
			return fmt.Errorf("%w: h=%g gives %g points, limit %d", dynamo.ErrTooManySteps, cfg.H, n, MaxGridPoints)
		}
	}
	return nil
}
