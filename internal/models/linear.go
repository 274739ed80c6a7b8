package models

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Linear is the inhomogeneous linear equation
//
//	y' = a·t + b·y
//
// The defaults a = 1, b = 3 give the y' = t + 3y demo problem.
type Linear struct {
	a, b float64
}

func NewLinear() *Linear { return &Linear{a: 1.0, b: 3.0} }

func (l *Linear) Derive(y, t float64) float64 { return l.a*t + l.b*y }
func (l *Linear) DefaultState() float64       { return 1.0 }
func (l *Linear) Formula() string             { return "y' = a*t + b*y" }

// Solution uses the particular solution -a·t/b - a/b² for b != 0 and plain
// quadrature otherwise.
func (l *Linear) Solution(y0, t0 float64) dynamo.Func {
	a, b := l.a, l.b
	if b == 0 {
		return func(t float64) float64 { return y0 + a*(t*t-t0*t0)/2 }
	}

	particular := func(t float64) float64 { return -a*t/b - a/(b*b) }
	c := y0 - particular(t0)
	return func(t float64) float64 {
		return c*math.Exp(b*(t-t0)) + particular(t)
	}
}

func (l *Linear) GetParams() map[string]float64 {
	return map[string]float64{"a": l.a, "b": l.b}
}

func (l *Linear) SetParam(name string, value float64) error {
	switch name {
	case "a":
		l.a = value
	case "b":
		l.b = value
	default:
		return unknownParam("linear", name)
	}
	return nil
}
