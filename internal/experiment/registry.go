package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/integrators"
	"github.com/san-kum/ivpsolve/internal/metrics"
	"github.com/san-kum/ivpsolve/internal/models"
)

// StabilityBound is the |y| above which a sample counts as unstable.
const StabilityBound = 1e6

type Registry struct {
	models      map[string]func() models.Model
	integrators map[string]func(tol float64) dynamo.Integrator
	adaptive    map[string]bool
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() models.Model),
		integrators: make(map[string]func(float64) dynamo.Integrator),
		adaptive:    make(map[string]bool),
	}

	r.models["growth"] = func() models.Model { return models.NewGrowth() }
	r.models["decay"] = func() models.Model { return models.NewDecay() }
	r.models["linear"] = func() models.Model { return models.NewLinear() }
	r.models["logcos"] = func() models.Model { return models.NewLogCos() }
	r.models["bump"] = func() models.Model { return models.NewBump() }
	r.models["logistic"] = func() models.Model { return models.NewLogistic() }
	r.models["blowup"] = func() models.Model { return models.NewBlowup() }
	r.models["cosine"] = func() models.Model { return models.NewCosine() }

	r.integrators["euler"] = func(float64) dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func(float64) dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["beuler"] = func(float64) dynamo.Integrator { return integrators.NewBackwardEuler() }
	r.integrators["rkf45"] = func(tol float64) dynamo.Integrator { return integrators.NewRKF45(tol) }
	r.integrators["dopri"] = func(tol float64) dynamo.Integrator { return integrators.NewDormandPrince(tol) }

	r.adaptive["rkf45"] = true
	r.adaptive["dopri"] = true

	return r
}

func (r *Registry) GetModel(name string) (models.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// GetIntegrator builds the named method. tol only affects adaptive
// methods; tol <= 0 selects dynamo.DefaultAdaptiveTol.
func (r *Registry) GetIntegrator(name string, tol float64) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(tol), nil
}

func (r *Registry) IsAdaptive(name string) bool {
	return r.adaptive[name]
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics always tracks stability and amplitude, plus the global
// error when the model has a closed-form solution.
func (r *Registry) DefaultMetrics(model models.Model, y0, t0 float64) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewStability(StabilityBound),
		metrics.NewRange(),
	}
	if s, ok := model.(dynamo.Solvable); ok {
		ms = append(ms, metrics.NewGlobalError(s.Solution(y0, t0)))
	}
	return ms
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
