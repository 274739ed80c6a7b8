package models

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Logistic is y' = r·y·(1 - y/K).
type Logistic struct {
	rate     float64
	capacity float64
}

func NewLogistic() *Logistic {
	return &Logistic{rate: 1.0, capacity: 10.0}
}

func (l *Logistic) Derive(y, _ float64) float64 {
	return l.rate * y * (1 - y/l.capacity)
}

func (l *Logistic) DefaultState() float64 { return 0.5 }
func (l *Logistic) Formula() string       { return "y' = r*y*(1 - y/K)" }

func (l *Logistic) Solution(y0, t0 float64) dynamo.Func {
	r, k := l.rate, l.capacity
	if y0 == 0 {
		return func(float64) float64 { return 0 }
	}
	ratio := (k - y0) / y0
	return func(t float64) float64 {
		return k / (1 + ratio*math.Exp(-r*(t-t0)))
	}
}

func (l *Logistic) GetParams() map[string]float64 {
	return map[string]float64{"r": l.rate, "K": l.capacity}
}

func (l *Logistic) SetParam(name string, value float64) error {
	switch name {
	case "r":
		l.rate = value
	case "K":
		l.capacity = value
	default:
		return unknownParam("logistic", name)
	}
	return nil
}
