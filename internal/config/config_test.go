package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/experiment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "linear" {
		t.Errorf("expected model linear, got %s", cfg.Model)
	}
	if cfg.H <= 0 {
		t.Error("h should be positive")
	}
	if cfg.Tf <= cfg.T0 {
		t.Error("tf should be after t0")
	}
	if cfg.Tolerance != dynamo.DefaultAdaptiveTol {
		t.Errorf("expected default tolerance %g, got %g", dynamo.DefaultAdaptiveTol, cfg.Tolerance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("model: decay\nintegrator: beuler\nh: 0.05\nparams:\n  k: 50\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "decay" || cfg.Integrator != "beuler" {
		t.Errorf("got model %s integrator %s", cfg.Model, cfg.Integrator)
	}
	if cfg.H != 0.05 {
		t.Errorf("expected h 0.05, got %g", cfg.H)
	}
	if cfg.Tf != DefaultTf {
		t.Errorf("unset tf should keep default %g, got %g", DefaultTf, cfg.Tf)
	}
	if cfg.Params["k"] != 50 {
		t.Errorf("expected k=50, got %v", cfg.Params)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("decay", "stiff")
	cfg.Record.Save = true

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Model != cfg.Model || loaded.H != cfg.H || loaded.Params["k"] != 50 || !loaded.Record.Save {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("h: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero step", func(c *Config) { c.H = 0 }, dynamo.ErrInvalidStep},
		{"negative step", func(c *Config) { c.H = -0.1 }, dynamo.ErrInvalidStep},
		{"reversed span", func(c *Config) { c.T0, c.Tf = 2, 1 }, dynamo.ErrInvalidSpan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Tolerance = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative tolerance")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("linear", "demo")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Integrator != "euler" || cfg.H != 0.1 {
		t.Errorf("unexpected preset %+v", cfg)
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg := GetPreset("decay", "stiff")
	cfg.H = 1
	cfg.Params["k"] = 1

	again := GetPreset("decay", "stiff")
	if again.H != 0.1 || again.Params["k"] != 50 {
		t.Errorf("preset mutated through returned copy: %+v", again)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("linear", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "demo")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("decay")
	if len(presets) != 2 || presets[0] != "stiff" {
		t.Errorf("unexpected presets %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

// Every preset must name a registered model and method and be runnable.
func TestPresetsResolve(t *testing.T) {
	reg := experiment.NewRegistry()

	for _, model := range ListPresetModels() {
		for _, name := range ListPresets(model) {
			cfg := GetPreset(model, name)
			if cfg.Model != model {
				t.Errorf("%s/%s: model field is %s", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
			if _, err := experiment.Build(reg, cfg.Experiment()); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}
