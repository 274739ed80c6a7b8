package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/ivpsolve/internal/config"
	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
	"github.com/san-kum/ivpsolve/internal/models"
)

// resolveConfig layers preset, config file and explicit flags, in that
// order, over the defaults of the named equation.
func resolveConfig(cmd *cobra.Command, reg *experiment.Registry, equation string) (*config.Config, error) {
	model, err := reg.GetModel(equation)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Model = equation
	cfg.Y0 = model.DefaultState()

	if preset != "" {
		p := config.GetPreset(equation, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(equation))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Model != equation {
			return nil, fmt.Errorf("config %s is for %s, not %s", configFile, loaded.Model, equation)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("method") || (preset == "" && configFile == "") {
		cfg.Integrator = method
	}
	if flags.Changed("y0") {
		cfg.Y0 = y0
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("tf") {
		cfg.Tf = tf
	}
	if flags.Changed("h") {
		cfg.H = h
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("fixed") {
		cfg.FixedStep = fixedStep
	}

	overrides, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(overrides))
	}
	for k, v := range overrides {
		cfg.Params[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseParams turns ["k=50", "r=0.5"] into a map.
func parseParams(raw []string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

// exactSolution returns the closed-form solution of a stored or
// configured problem, or nil when the equation has none.
func exactSolution(reg *experiment.Registry, equation string, p map[string]float64, y0, t0 float64) (dynamo.Func, error) {
	model, err := reg.GetModel(equation)
	if err != nil {
		return nil, err
	}
	if err := models.ApplyParams(model, p); err != nil {
		return nil, err
	}
	if s, ok := model.(dynamo.Solvable); ok {
		return s.Solution(y0, t0), nil
	}
	return nil, nil
}
