package models

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// LogCos is y' = ln|y| - cos(ω·t). It has no closed form and is undefined
// at y = 0.
type LogCos struct {
	omega float64
}

func NewLogCos() *LogCos { return &LogCos{omega: 1.0} }

func (l *LogCos) Derive(y, t float64) float64 {
	return math.Log(math.Abs(y)) - math.Cos(l.omega*t)
}

func (l *LogCos) DefaultState() float64 { return 1.0 }
func (l *LogCos) Formula() string       { return "y' = ln|y| - cos(w*t)" }

func (l *LogCos) GetParams() map[string]float64 {
	return map[string]float64{"w": l.omega}
}

func (l *LogCos) SetParam(name string, value float64) error {
	if name != "w" {
		return unknownParam("logcos", name)
	}
	l.omega = value
	return nil
}

// Bump is y' = (y - a)²·(t - b)². Separating variables gives
//
//	y(t) = a - 1 / ((t-b)³/3 + C)
//
// with y = a as the constant solution.
type Bump struct {
	a, b float64
}

func NewBump() *Bump { return &Bump{a: 1.0, b: 1.0} }

func (m *Bump) Derive(y, t float64) float64 {
	dy, dt := y-m.a, t-m.b
	return dy * dy * dt * dt
}

func (m *Bump) DefaultState() float64 { return 0.0 }
func (m *Bump) Formula() string       { return "y' = (y-a)^2 * (t-b)^2" }

func (m *Bump) Solution(y0, t0 float64) dynamo.Func {
	a, b := m.a, m.b
	if y0 == a {
		return func(float64) float64 { return a }
	}

	cube := func(t float64) float64 {
		d := t - b
		return d * d * d / 3
	}
	c := -1/(y0-a) - cube(t0)
	return func(t float64) float64 { return a - 1/(cube(t)+c) }
}

func (m *Bump) GetParams() map[string]float64 {
	return map[string]float64{"a": m.a, "b": m.b}
}

func (m *Bump) SetParam(name string, value float64) error {
	switch name {
	case "a":
		m.a = value
	case "b":
		m.b = value
	default:
		return unknownParam("bump", name)
	}
	return nil
}
