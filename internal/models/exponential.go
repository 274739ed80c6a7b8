package models

import (
	"math"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

// Growth is y' = r·y.
type Growth struct {
	rate float64
}

func NewGrowth() *Growth { return &Growth{rate: 1.0} }

func (g *Growth) Derive(y, _ float64) float64 { return g.rate * y }
func (g *Growth) DefaultState() float64       { return 1.0 }
func (g *Growth) Formula() string             { return "y' = r*y" }

func (g *Growth) Solution(y0, t0 float64) dynamo.Func {
	r := g.rate
	return func(t float64) float64 { return y0 * math.Exp(r*(t-t0)) }
}

func (g *Growth) GetParams() map[string]float64 {
	return map[string]float64{"r": g.rate}
}

func (g *Growth) SetParam(name string, value float64) error {
	if name != "r" {
		return unknownParam("growth", name)
	}
	g.rate = value
	return nil
}

// Decay is y' = -k·y. Large k makes it stiff.
type Decay struct {
	k float64
}

func NewDecay() *Decay { return &Decay{k: 2.0} }

func (d *Decay) Derive(y, _ float64) float64 { return -d.k * y }
func (d *Decay) DefaultState() float64       { return 1.0 }
func (d *Decay) Formula() string             { return "y' = -k*y" }

func (d *Decay) Solution(y0, t0 float64) dynamo.Func {
	k := d.k
	return func(t float64) float64 { return y0 * math.Exp(-k*(t-t0)) }
}

func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{"k": d.k}
}

func (d *Decay) SetParam(name string, value float64) error {
	if name != "k" {
		return unknownParam("decay", name)
	}
	d.k = value
	return nil
}
