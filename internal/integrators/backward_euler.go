package integrators

import (
	"fmt"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/rootfind"
)

// BackwardEuler solves y_new = y + h·f(y_new, t+h) with Newton-Raphson,
// seeded with y. It is A-stable: decaying problems stay bounded at any h.
type BackwardEuler struct {
	Newton *rootfind.Newton
}

func NewBackwardEuler() *BackwardEuler {
	return &BackwardEuler{Newton: rootfind.NewNewton(dynamo.DefaultRootTol)}
}

// Step returns the root finder's error unchanged in its chain; a
// non-converged y is never returned as a result.
func (b *BackwardEuler) Step(f dynamo.Derivative, y, t, h float64) (float64, error) {
	g := func(yNext, tNext float64) float64 {
		return yNext - y - h*f(yNext, tNext)
	}

	root, err := b.Newton.Solve(g, t+h, y)
	if err != nil {
		return y, fmt.Errorf("backward euler at t=%g: %w", t+h, err)
	}
	return root.Y, nil
}
