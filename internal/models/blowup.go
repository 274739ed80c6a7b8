package models

import "github.com/san-kum/ivpsolve/internal/dynamo"

// Blowup is y' = k·y². For y0 > 0 the solution
//
//	y(t) = y0 / (1 - k·y0·(t - t0))
//
// is singular at t = t0 + 1/(k·y0); adaptive runs stop short of it.
type Blowup struct {
	k float64
}

func NewBlowup() *Blowup { return &Blowup{k: 1.0} }

func (b *Blowup) Derive(y, _ float64) float64 { return b.k * y * y }
func (b *Blowup) DefaultState() float64       { return 1.0 }
func (b *Blowup) Formula() string             { return "y' = k*y^2" }

func (b *Blowup) Solution(y0, t0 float64) dynamo.Func {
	k := b.k
	return func(t float64) float64 { return y0 / (1 - k*y0*(t-t0)) }
}

// Singularity returns the blow-up time for a run from (t0, y0), or
// ok=false when the solution stays bounded for t > t0.
func (b *Blowup) Singularity(y0, t0 float64) (t float64, ok bool) {
	if b.k*y0 <= 0 {
		return 0, false
	}
	return t0 + 1/(b.k*y0), true
}

func (b *Blowup) GetParams() map[string]float64 {
	return map[string]float64{"k": b.k}
}

func (b *Blowup) SetParam(name string, value float64) error {
	if name != "k" {
		return unknownParam("blowup", name)
	}
	b.k = value
	return nil
}
