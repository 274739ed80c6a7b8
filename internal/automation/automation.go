package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario
type ScenarioStep struct {
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	Y0         float64            `yaml:"y0"`
	T0         float64            `yaml:"t0"`
	Tf         float64            `yaml:"tf"`
	H          float64            `yaml:"h"`
	Tolerance  float64            `yaml:"tolerance"`
	FixedStep  bool               `yaml:"fixed_step"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func (s ScenarioStep) Experiment() experiment.Config {
	return experiment.Config{
		Model:      s.Model,
		Integrator: s.Integrator,
		Y0:         s.Y0,
		T0:         s.T0,
		Tf:         s.Tf,
		H:          s.H,
		Tolerance:  s.Tolerance,
		Params:     s.Params,
		FixedStep:  s.FixedStep,
	}
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepResult pairs a scenario step with the run it produced.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
}

// Runner executes scenarios, sweeps and Monte Carlo batches one run at a
// time against a registry.
type Runner struct {
	Registry *experiment.Registry
	Logger   *slog.Logger
}

func NewRunner(reg *experiment.Registry) *Runner {
	return &Runner{Registry: reg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the results gathered so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.Logger.Info("running scenario step",
			"scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps),
			"model", step.Model, "integrator", step.Integrator)

		exp, err := experiment.Build(r.Registry, step.Experiment())
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Result: result})
	}

	return results, nil
}

// ParameterSweep runs the same problem across a range of one parameter
type ParameterSweep struct {
	Base      experiment.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the outcome for one parameter value
type SweepResult struct {
	ParamValue float64
	FinalTime  float64
	FinalState float64
	MaxError   float64
	Aborted    bool
}

// RunSweep executes a parameter sweep
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base
		cfg.Params = make(map[string]float64, len(sweep.Base.Params)+1)
		for k, v := range sweep.Base.Params {
			cfg.Params[k] = v
		}
		cfg.Params[sweep.ParamName] = paramVal

		exp, err := experiment.Build(r.Registry, cfg)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		t, y, _ := result.Final()
		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalTime:  t,
			FinalState: y,
			MaxError:   result.Metrics["max_error"],
			Aborted:    result.Aborted,
		})

		r.Logger.Debug("sweep point done", "index", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial value of a base problem
type MonteCarloConfig struct {
	Base         experiment.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID    int
	Y0         float64
	FinalState float64
	Stable     bool // stayed within experiment.StabilityBound
}

// RunMonteCarlo executes trials with y0 drawn uniformly from
// Base.Y0 ± Perturbation.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		expCfg := cfg.Base
		expCfg.Y0 = cfg.Base.Y0 + (rng.Float64()-0.5)*2*cfg.Perturbation

		exp, err := experiment.Build(r.Registry, expCfg)
		if err != nil {
			return nil, err
		}

		// A diverged trial is an unstable outcome, not a failed batch.
		result, err := exp.Run(ctx)
		diverged := errors.Is(err, dynamo.ErrDiverged) && result != nil
		if err != nil && !diverged {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}
		if diverged {
			r.Logger.Debug("monte carlo trial diverged", "trial", trial, "y0", expCfg.Y0, "err", err)
		}

		_, final, _ := result.Final()
		results = append(results, MonteCarloResult{
			TrialID:    trial,
			Y0:         expCfg.Y0,
			FinalState: final,
			Stable:     !diverged && !result.Aborted && result.Metrics["stability"] == 1,
		})

		if (trial+1)%10 == 0 {
			r.Logger.Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
