package config

import "sort"

var Presets = map[string]map[string]*Config{
	"linear": {
		"demo": {
			Model: "linear", Integrator: "euler", Y0: 1, T0: 0, Tf: 3, H: 0.1,
		},
		"accurate": {
			Model: "linear", Integrator: "rk4", Y0: 1, T0: 0, Tf: 3, H: 0.01,
		},
	},
	"logcos": {
		"demo": {
			Model: "logcos", Integrator: "rkf45", Y0: 1, T0: 0, Tf: 3, H: 0.1,
			Tolerance: 0.005,
		},
		"dopri": {
			Model: "logcos", Integrator: "dopri", Y0: 1, T0: 0, Tf: 3, H: 0.1,
			Tolerance: 0.005,
		},
	},
	"bump": {
		"demo": {
			Model: "bump", Integrator: "beuler", Y0: 0, T0: 0, Tf: 2, H: 0.1,
		},
	},
	"decay": {
		"stiff": {
			Model: "decay", Integrator: "beuler", Y0: 1, T0: 0, Tf: 2, H: 0.1,
			Params: map[string]float64{"k": 50},
		},
		"stiff_explicit": {
			Model: "decay", Integrator: "euler", Y0: 1, T0: 0, Tf: 2, H: 0.1,
			Params: map[string]float64{"k": 50},
		},
	},
	"blowup": {
		"pole": {
			Model: "blowup", Integrator: "rkf45", Y0: 1, T0: 0, Tf: 2, H: 0.1,
			Tolerance: 0.005,
		},
	},
	"logistic": {
		"growth": {
			Model: "logistic", Integrator: "dopri", Y0: 0.5, T0: 0, Tf: 10, H: 0.5,
			Tolerance: 1e-6,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}

	out := *cfg
	if cfg.Params != nil {
		out.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			out.Params[k] = v
		}
	}
	return &out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListPresetModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
