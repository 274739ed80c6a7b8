package integrators

import "github.com/san-kum/ivpsolve/internal/dynamo"

// Euler is the forward Euler method. Global error O(h).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f dynamo.Derivative, y, t, h float64) (float64, error) {
	return y + h*f(y, t), nil
}
