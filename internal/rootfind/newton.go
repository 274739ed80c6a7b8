// Package rootfind solves f(y, t) = 0 for y with Newton-Raphson.
//
// The Jacobian is the forward difference [numdiff.PartialY]. Iteration
// stops once two successive iterates differ by less than the tolerance.
package rootfind

import (
	"fmt"
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/numdiff"
)

// Newton holds the iteration limits. The zero value is not usable; use NewNewton.
type Newton struct {
	Tol          float64
	MaxIter      int
	JacobianStep float64
}

// NewNewton returns a solver with tolerance tol; tol <= 0 selects
// dynamo.DefaultRootTol.
func NewNewton(tol float64) *Newton {
	if tol <= 0 {
		tol = dynamo.DefaultRootTol
	}
	return &Newton{
		Tol:          tol,
		MaxIter:      dynamo.MaxNewtonIter,
		JacobianStep: dynamo.DefaultFDStep,
	}
}

// Root is a converged solution.
type Root struct {
	Y          float64
	Iterations int
	Residual   float64
}

// Error reports where Newton-Raphson gave up.
type Error struct {
	Iterations int
	Last       float64
	Wrapped    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("newton: after %d iterations at y=%g: %v", e.Iterations, e.Last, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Solve finds y with f(y, t) ≈ 0 starting from y0. Convergence means
// |y_{k+1} - y_k| < Tol. A vanishing Jacobian fails immediately with
// dynamo.ErrZeroDerivative instead of dividing by zero.
func (n *Newton) Solve(f dynamo.Derivative, t, y0 float64) (Root, error) {
	y := y0
	for iter := 1; iter <= n.MaxIter; iter++ {
		fy := f(y, t)
		if !dynamo.IsFinite(fy) {
			return Root{}, &Error{Iterations: iter, Last: y, Wrapped: dynamo.ErrDiverged}
		}

		jac := numdiff.PartialY(f, y, t, n.JacobianStep)
		if jac == 0 || !dynamo.IsFinite(jac) {
			return Root{}, &Error{Iterations: iter, Last: y, Wrapped: dynamo.ErrZeroDerivative}
		}

		next := y - fy/jac
		if !dynamo.IsFinite(next) {
			return Root{}, &Error{Iterations: iter, Last: y, Wrapped: dynamo.ErrDiverged}
		}

		if math.Abs(next-y) < n.Tol {
			return Root{Y: next, Iterations: iter, Residual: math.Abs(f(next, t))}, nil
		}
		y = next
	}

	return Root{}, &Error{Iterations: n.MaxIter, Last: y, Wrapped: dynamo.ErrNoConvergence}
}

// FindZero is Solve with the default iteration cap and Jacobian step.
// e <= 0 selects dynamo.DefaultRootTol.
func FindZero(f dynamo.Derivative, t, y0, e float64) (float64, error) {
	root, err := NewNewton(e).Solve(f, t, y0)
	if err != nil {
		return 0, err
	}
	return root.Y, nil
}
