package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/numdiff"
)

func allModels() map[string]Model {
	return map[string]Model{
		"growth":   NewGrowth(),
		"decay":    NewDecay(),
		"linear":   NewLinear(),
		"logcos":   NewLogCos(),
		"bump":     NewBump(),
		"logistic": NewLogistic(),
		"blowup":   NewBlowup(),
		"cosine":   NewCosine(),
	}
}

func TestDemoDerivatives(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		y, t  float64
		want  float64
	}{
		{"linear", NewLinear(), 1, 0, 3},
		{"linear with time", NewLinear(), 2, 1, 7},
		{"logcos", NewLogCos(), 1, 0, -1},
		{"logcos negative state", NewLogCos(), -math.E, math.Pi / 2, 1},
		{"bump at center", NewBump(), 5, 1, 0},
		{"bump", NewBump(), 0, 0, 1},
		{"blowup", NewBlowup(), 3, 0, 9},
		{"cosine", NewCosine(), 42, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.model.Derive(tt.y, tt.t)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Derive(%g, %g) = %g, want %g", tt.y, tt.t, got, tt.want)
			}
		})
	}
}

// A closed-form solution must pass through (t0, y0) and satisfy the
// equation along the way.
func TestSolutionsSatisfyEquation(t *testing.T) {
	for name, m := range allModels() {
		s, ok := m.(dynamo.Solvable)
		if !ok {
			continue
		}

		t.Run(name, func(t *testing.T) {
			y0, t0 := m.DefaultState(), 0.0
			exact := s.Solution(y0, t0)

			if got := exact(t0); math.Abs(got-y0) > 1e-12 {
				t.Fatalf("solution starts at %g, want %g", got, y0)
			}

			for _, tm := range []float64{0.1, 0.3, 0.5, 0.8} {
				slope := numdiff.Central(exact, tm, 1e-5)
				want := m.Derive(exact(tm), tm)
				if math.Abs(slope-want) > 1e-5*math.Max(1, math.Abs(want)) {
					t.Errorf("t=%g: solution slope %g, equation gives %g", tm, slope, want)
				}
			}
		})
	}
}

func TestLinearWithoutStateTerm(t *testing.T) {
	l := NewLinear()
	if err := l.SetParam("b", 0); err != nil {
		t.Fatal(err)
	}

	exact := l.Solution(1, 0)
	if got := exact(2); math.Abs(got-3) > 1e-12 {
		t.Errorf("y(2) = %g, want 3", got)
	}
}

func TestBumpEquilibrium(t *testing.T) {
	b := NewBump()
	exact := b.Solution(1, 0)
	if got := exact(5); got != 1 {
		t.Errorf("y(5) = %g, want constant 1", got)
	}
}

func TestLogisticApproachesCapacity(t *testing.T) {
	l := NewLogistic()
	exact := l.Solution(l.DefaultState(), 0)

	if got := exact(30); math.Abs(got-10) > 1e-6 {
		t.Errorf("y(30) = %g, want ~10", got)
	}
	if got := l.Solution(0, 0)(5); got != 0 {
		t.Errorf("zero population grew to %g", got)
	}
}

func TestBlowupSingularity(t *testing.T) {
	b := NewBlowup()

	ts, ok := b.Singularity(2, 1)
	if !ok || math.Abs(ts-1.5) > 1e-12 {
		t.Errorf("Singularity(2, 1) = %g, %v, want 1.5, true", ts, ok)
	}
	if _, ok := b.Singularity(-1, 0); ok {
		t.Error("negative start should not blow up forward in time")
	}

	exact := b.Solution(1, 0)
	if y := exact(0.999); y < 999 {
		t.Errorf("y(0.999) = %g, expected growth toward the pole", y)
	}
}

func TestParams(t *testing.T) {
	for name, m := range allModels() {
		t.Run(name, func(t *testing.T) {
			for p, v := range m.GetParams() {
				if err := m.SetParam(p, v+1); err != nil {
					t.Fatalf("SetParam(%q): %v", p, err)
				}
				if got := m.GetParams()[p]; got != v+1 {
					t.Errorf("param %q = %g after set, want %g", p, got, v+1)
				}
			}

			err := m.SetParam("nope", 1)
			if !errors.Is(err, dynamo.ErrUnknownParam) {
				t.Errorf("SetParam(nope) error = %v, want ErrUnknownParam", err)
			}
		})
	}
}

func TestApplyParams(t *testing.T) {
	d := NewDecay()
	if err := ApplyParams(d, map[string]float64{"k": 5}); err != nil {
		t.Fatal(err)
	}
	if got := Derivative(d)(2, 0); got != -10 {
		t.Errorf("derivative after ApplyParams = %g, want -10", got)
	}

	if err := ApplyParams(d, map[string]float64{"mu": 1}); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestFormulas(t *testing.T) {
	for name, m := range allModels() {
		if m.Formula() == "" {
			t.Errorf("%s has no formula", name)
		}
	}
}
