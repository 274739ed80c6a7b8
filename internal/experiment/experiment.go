package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/models"
	"github.com/san-kum/ivpsolve/internal/sim"
)

type Config struct {
	Model      string
	Integrator string
	Y0         float64
	T0         float64
	Tf         float64
	H          float64
	Tolerance  float64
	Params     map[string]float64

	// FixedStep runs an embedded method on the uniform grid instead of
	// under step-size control.
	FixedStep bool
}

type Experiment struct {
	cfg       Config
	model     models.Model
	simulator *sim.Simulator
	adaptive  bool
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Build resolves cfg against the registry, applies the model parameters
// and attaches the default metrics.
func Build(reg *Registry, cfg Config) (*Experiment, error) {
	model, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	if err := models.ApplyParams(model, cfg.Params); err != nil {
		return nil, err
	}

	integ, err := reg.GetIntegrator(cfg.Integrator, cfg.Tolerance)
	if err != nil {
		return nil, err
	}

	e := New(cfg)
	if err := e.Setup(model, integ, reg.DefaultMetrics(model, cfg.Y0, cfg.T0)); err != nil {
		return nil, err
	}
	e.adaptive = reg.IsAdaptive(cfg.Integrator) && !cfg.FixedStep
	return e, nil
}

func (e *Experiment) Setup(model models.Model, integrator dynamo.Integrator, metrics []dynamo.Metric) error {
	if model == nil || integrator == nil {
		return fmt.Errorf("experiment needs a model and an integrator")
	}
	e.model = model
	e.simulator = sim.New(integrator)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Span:          dynamo.Span{T0: e.cfg.T0, Tf: e.cfg.Tf},
		H:             e.cfg.H,
		Adaptive:      e.adaptive,
		ValidateState: true,
	}

	return e.simulator.Run(ctx, models.Derivative(e.model), e.cfg.Y0, simCfg)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	if e.simulator != nil {
		e.simulator.WithLogger(l)
	}
	return e
}

func (e *Experiment) Model() models.Model { return e.model }
func (e *Experiment) Adaptive() bool      { return e.adaptive }
func (e *Experiment) Config() Config      { return e.cfg }
