package integrators

import "github.com/san-kum/ivpsolve/internal/dynamo"

// RK4 is the classical four-stage Runge-Kutta method. Global error O(h⁴).
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f dynamo.Derivative, y, t, h float64) (float64, error) {
	half := h * 0.5

	k1 := f(y, t)
	k2 := f(y+half*k1, t+half)
	k3 := f(y+half*k2, t+half)
	k4 := f(y+h*k3, t+h)

	return y + h/6.0*(k1+2*k2+2*k3+k4), nil
}
