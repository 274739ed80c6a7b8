// Package models holds the built-in scalar equations y' = f(y, t).
//
// Every model carries its own parameters and a default initial value;
// the ones with a closed-form solution also implement dynamo.Solvable so
// runs can be scored against the exact curve.
package models

import (
	"fmt"

	"github.com/san-kum/ivpsolve/internal/dynamo"
)

type Model interface {
	dynamo.Equation
	dynamo.Configurable
	DefaultState() float64
	Formula() string
}

// Derivative adapts a model to the function type the integrators take.
func Derivative(m dynamo.Equation) dynamo.Derivative {
	return m.Derive
}

// ApplyParams sets every entry of params on m and stops at the first
// unknown name.
func ApplyParams(m dynamo.Configurable, params map[string]float64) error {
	for name, value := range params {
		if err := m.SetParam(name, value); err != nil {
			return err
		}
	}
	return nil
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrUnknownParam, model, name)
}
