// Package numdiff estimates derivatives by finite differences.
//
// Every function takes the step dt as given. dt must be non-zero; a zero
// step divides by zero and is the caller's contract violation, so it is
// not checked here.
package numdiff

import "github.com/san-kum/ivpsolve/internal/dynamo"

// Forward approximates f'(t) with (f(t+dt) - f(t)) / dt. Error is O(dt).
func Forward(f dynamo.Func, t, dt float64) float64 {
	return (f(t+dt) - f(t)) / dt
}

// Backward approximates f'(t) with (f(t) - f(t-dt)) / dt. Error is O(dt).
func Backward(f dynamo.Func, t, dt float64) float64 {
	return (f(t) - f(t-dt)) / dt
}

// Central approximates f'(t) over the total span dt, split evenly on both
// sides of t. Error is O(dt²).
func Central(f dynamo.Func, t, dt float64) float64 {
	half := dt / 2
	return (f(t+half) - f(t-half)) / dt
}

// PartialY is the forward difference of f(y, t) in y with t held fixed.
// Newton-Raphson uses it as the scalar Jacobian.
func PartialY(f dynamo.Derivative, y, t, dt float64) float64 {
	return (f(y+dt, t) - f(y, t)) / dt
}

func ForwardDefault(f dynamo.Func, t float64) float64 {
	return Forward(f, t, dynamo.DefaultFDStep)
}

func BackwardDefault(f dynamo.Func, t float64) float64 {
	return Backward(f, t, dynamo.DefaultFDStep)
}

func CentralDefault(f dynamo.Func, t float64) float64 {
	return Central(f, t, dynamo.DefaultCentralStep)
}
