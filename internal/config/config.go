// Package config loads the optional YAML configuration that tunes the
// fitter's solver and the job server's storage.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings for transitfit.
type Config struct {
	// MaxFunEvals caps the least-squares solver's model evaluations.
	MaxFunEvals int `yaml:"max_fun_evals"`

	// CostTol is the solver's relative cost-decrease convergence
	// threshold.
	CostTol float64 `yaml:"cost_tol"`

	// Global enables the mayfly global pre-search before the local
	// solve.
	Global GlobalSearch `yaml:"global"`

	// DataDir is the base directory for persisted fit results.
	DataDir string `yaml:"data_dir"`
}

// GlobalSearch configures the optional metaheuristic pre-search.
type GlobalSearch struct {
	Enabled  bool  `yaml:"enabled"`
	MaxIters int   `yaml:"max_iters"`
	PopSize  int   `yaml:"pop_size"`
	Seed     int64 `yaml:"seed"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxFunEvals: 5000,
		CostTol:     0, // solver default
		Global: GlobalSearch{
			Enabled:  false,
			MaxIters: 200,
			PopSize:  20,
			Seed:     42,
		},
		DataDir: "./data",
	}
}

// Load reads the config at path, layered over the defaults. A missing
// file is not an error: the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.MaxFunEvals <= 0 {
		return cfg, fmt.Errorf("invalid config: max_fun_evals must be positive, got %d", cfg.MaxFunEvals)
	}
	if cfg.Global.Enabled && cfg.Global.PopSize < 20 {
		// mayfly v0.1.0 rejects smaller populations
		return cfg, fmt.Errorf("invalid config: global.pop_size must be at least 20, got %d", cfg.Global.PopSize)
	}
	return cfg, nil
}
