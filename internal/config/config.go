package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
)

const (
	DefaultH         = 0.1
	DefaultT0        = 0.0
	DefaultTf        = 3.0
	DefaultY0        = 1.0
	DefaultTolerance = dynamo.DefaultAdaptiveTol
)

type Config struct {
	Model      string             `yaml:"model"`
	Integrator string             `yaml:"integrator"`
	Y0         float64            `yaml:"y0"`
	T0         float64            `yaml:"t0"`
	Tf         float64            `yaml:"tf"`
	H          float64            `yaml:"h"`
	Tolerance  float64            `yaml:"tolerance"`
	FixedStep  bool               `yaml:"fixed_step"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	Record     RecordConfig       `yaml:"record"`
}

// RecordConfig controls what happens to a finished run.
type RecordConfig struct {
	Save   bool   `yaml:"save"`
	SQLite string `yaml:"sqlite,omitempty"`
}

// DefaultConfig reproduces the y' = t + 3y, y(0) = 1 demo on [0, 3].
func DefaultConfig() *Config {
	return &Config{
		Model:      "linear",
		Integrator: "rk4",
		Y0:         DefaultY0,
		T0:         DefaultT0,
		Tf:         DefaultTf,
		H:          DefaultH,
		Tolerance:  DefaultTolerance,
		Record:     RecordConfig{Save: true},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the numeric fields; model and method names are checked
// by the registry.
func (c *Config) Validate() error {
	if c.H <= 0 || !dynamo.IsFinite(c.H) {
		return fmt.Errorf("%w, got %g", dynamo.ErrInvalidStep, c.H)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance)
	}
	return dynamo.Span{T0: c.T0, Tf: c.Tf}.Validate()
}

func (c *Config) Experiment() experiment.Config {
	params := make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	return experiment.Config{
		Model:      c.Model,
		Integrator: c.Integrator,
		Y0:         c.Y0,
		T0:         c.T0,
		Tf:         c.Tf,
		H:          c.H,
		Tolerance:  c.Tolerance,
		Params:     params,
		FixedStep:  c.FixedStep,
	}
}
