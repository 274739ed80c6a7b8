package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrNoConvergence indicates Newton-Raphson hit its iteration cap.
	ErrNoConvergence = errors.New("dynamo: root finder did not converge")

	// ErrZeroDerivative indicates a vanishing Jacobian inside Newton-Raphson.
	ErrZeroDerivative = errors.New("dynamo: zero derivative in newton step")

	// ErrDiverged indicates an iterate or state became NaN or Inf.
	ErrDiverged = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrInvalidStep indicates a non-positive or non-finite step size.
	ErrInvalidStep = errors.New("dynamo: step size must be positive and finite")

	// ErrTooManySteps indicates a fixed-step grid longer than the driver allows.
	ErrTooManySteps = errors.New("dynamo: step size too small for the time span")

	// ErrInvalidSpan indicates a malformed integration interval.
	ErrInvalidSpan = errors.New("dynamo: invalid time span")

	// ErrNilDerivative indicates a missing right-hand side.
	ErrNilDerivative = errors.New("dynamo: derivative function is nil")

	// ErrNotAdaptive indicates a fixed-step integrator was handed to the adaptive driver.
	ErrNotAdaptive = errors.New("dynamo: integrator has no adaptive step")

	// ErrUnknownParam indicates a parameter name an equation does not define.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// StepError wraps a failure with the position in the run where it happened.
type StepError struct {
	Step    int
	Time    float64
	Y       float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, y=%.6g): %v", e.Step, e.Time, e.Y, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
