package models

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Cosine is the pure quadrature y' = A·cos(ω·t).
type Cosine struct {
	amplitude float64
	omega     float64
}

func NewCosine() *Cosine { return &Cosine{amplitude: 1.0, omega: 1.0} }

func (c *Cosine) Derive(_, t float64) float64 { return c.amplitude * math.Cos(c.omega*t) }
func (c *Cosine) DefaultState() float64       { return 0.0 }
func (c *Cosine) Formula() string             { return "y' = A*cos(w*t)" }

func (c *Cosine) Solution(y0, t0 float64) dynamo.Func {
	a, w := c.amplitude, c.omega
	if w == 0 {
		return func(t float64) float64 { return y0 + a*(t-t0) }
	}
	return func(t float64) float64 {
		return y0 + a/w*(math.Sin(w*t)-math.Sin(w*t0))
	}
}

func (c *Cosine) GetParams() map[string]float64 {
	return map[string]float64{"A": c.amplitude, "w": c.omega}
}

func (c *Cosine) SetParam(name string, value float64) error {
	switch name {
	case "A":
		c.amplitude = value
	case "w":
		c.omega = value
	default:
		return unknownParam("cosine", name)
	}
	return nil
}
