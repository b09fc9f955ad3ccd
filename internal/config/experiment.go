package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/bestarm/internal/models"
)

// DefaultExperimentConfig returns an ExperimentConfig with default values.
// env_type, k, difficulty, and bandit_types have no defaults and must come
// from the file.
func DefaultExperimentConfig() models.ExperimentConfig {
	return models.ExperimentConfig{
		ResultsDir:      "results",
		GaussianSigma:   1.0,
		NRuns:           100,
		Delta:           0.05,
		Epsilon:         0.0,
		MinPullsPerArm:  1,
		MaxTimeSteps:    10000,
		NConcurrentRuns: 1,
		LogLevel:        "info",
	}
}

// LoadExperimentConfig loads, parses, and validates an experiment.yaml file.
// Defaults are applied first, then file values, then validation.
func LoadExperimentConfig(path string) (models.ExperimentConfig, error) {
	cfg := DefaultExperimentConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading experiment config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing experiment config: %w", err)
	}

	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
