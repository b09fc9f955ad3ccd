package models

import (
	"fmt"
	"strings"
)

// EnvKind selects the reward distribution family.
type EnvKind string

const (
	EnvBernoulli EnvKind = "bernoulli"
	EnvGaussian  EnvKind = "gaussian"
)

// Difficulty selects the fixed true-mean table for an environment.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// PolicyKind identifies a bandit policy variant. The set is closed: adding a
// policy means adding a constant here and a case in policy.New.
type PolicyKind string

const (
	PolicyUniformNaiveNoBonferroni PolicyKind = "uniform_naive_no_bonferroni"
	PolicyUniformNaiveBonferroni   PolicyKind = "uniform_naive_bonferroni"
	PolicyTrackAndStop             PolicyKind = "track_and_stop"
)

// ParsePolicyKind canonicalizes a policy name. Dashes are accepted in place
// of underscores.
func ParsePolicyKind(s string) (PolicyKind, error) {
	kind := PolicyKind(strings.ReplaceAll(s, "-", "_"))
	switch kind {
	case PolicyUniformNaiveNoBonferroni, PolicyUniformNaiveBonferroni, PolicyTrackAndStop:
		return kind, nil
	}
	return "", &ConfigurationError{Field: "bandit_types", Reason: fmt.Sprintf("unknown bandit type %q", s)}
}

// ExperimentConfig represents the parsed experiment.yaml configuration.
type ExperimentConfig struct {
	Name            *string      `yaml:"name,omitempty" json:"name,omitempty"`
	ResultsDir      string       `yaml:"results_dir" json:"results_dir"`
	EnvType         EnvKind      `yaml:"env_type" json:"env_type"`
	K               int          `yaml:"k" json:"k"`
	Difficulty      Difficulty   `yaml:"difficulty" json:"difficulty"`
	GaussianSigma   float64      `yaml:"gaussian_sigma" json:"gaussian_sigma"`
	BanditTypes     []PolicyKind `yaml:"bandit_types" json:"bandit_types"`
	NRuns           int          `yaml:"n_runs" json:"n_runs"`
	Delta           float64      `yaml:"delta" json:"delta"`
	Epsilon         float64      `yaml:"epsilon" json:"epsilon"`
	MinPullsPerArm  int          `yaml:"min_pulls_per_arm" json:"min_pulls_per_arm"`
	MaxTimeSteps    int          `yaml:"max_time_steps" json:"max_time_steps"`
	BaseSeed        int64        `yaml:"base_seed" json:"base_seed"`
	NConcurrentRuns int          `yaml:"n_concurrent_runs" json:"n_concurrent_runs"`
	LogLevel        string       `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	Plot            PlotConfig   `yaml:"plot,omitempty" json:"plot,omitempty"`
}

type PlotConfig struct {
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

// Validate checks the configuration and canonicalizes bandit type names.
// All violations are ConfigurationErrors naming the offending field.
func (c *ExperimentConfig) Validate() error {
	switch c.EnvType {
	case EnvBernoulli, EnvGaussian:
	default:
		return &ConfigurationError{Field: "env_type", Reason: fmt.Sprintf("must be %q or %q, got %q", EnvBernoulli, EnvGaussian, c.EnvType)}
	}

	if c.K < 2 {
		return &ConfigurationError{Field: "k", Reason: fmt.Sprintf("must be >= 2, got %d", c.K)}
	}

	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return &ConfigurationError{Field: "difficulty", Reason: fmt.Sprintf("must be easy, medium, or hard, got %q", c.Difficulty)}
	}

	if c.GaussianSigma <= 0 {
		return &ConfigurationError{Field: "gaussian_sigma", Reason: fmt.Sprintf("must be > 0, got %g", c.GaussianSigma)}
	}

	if len(c.BanditTypes) == 0 {
		return &ConfigurationError{Field: "bandit_types", Reason: "must list at least one bandit type"}
	}
	seen := make(map[PolicyKind]bool, len(c.BanditTypes))
	for i, bt := range c.BanditTypes {
		kind, err := ParsePolicyKind(string(bt))
		if err != nil {
			return err
		}
		if seen[kind] {
			return &ConfigurationError{Field: "bandit_types", Reason: fmt.Sprintf("duplicate bandit type %q", kind)}
		}
		seen[kind] = true
		c.BanditTypes[i] = kind
	}

	if c.NRuns < 1 {
		return &ConfigurationError{Field: "n_runs", Reason: fmt.Sprintf("must be >= 1, got %d", c.NRuns)}
	}
	if c.Delta <= 0 || c.Delta >= 1 {
		return &ConfigurationError{Field: "delta", Reason: fmt.Sprintf("must be in (0, 1), got %g", c.Delta)}
	}
	if c.Epsilon < 0 {
		return &ConfigurationError{Field: "epsilon", Reason: fmt.Sprintf("must be >= 0, got %g", c.Epsilon)}
	}
	if c.MinPullsPerArm < 1 {
		return &ConfigurationError{Field: "min_pulls_per_arm", Reason: fmt.Sprintf("must be >= 1, got %d", c.MinPullsPerArm)}
	}
	if c.MaxTimeSteps < 0 {
		return &ConfigurationError{Field: "max_time_steps", Reason: fmt.Sprintf("must be >= 0, got %d", c.MaxTimeSteps)}
	}
	if c.NConcurrentRuns < 0 {
		return &ConfigurationError{Field: "n_concurrent_runs", Reason: fmt.Sprintf("must be >= 0, got %d", c.NConcurrentRuns)}
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return &ConfigurationError{Field: "log_level", Reason: fmt.Sprintf("must be debug, info, warn, or error, got %q", c.LogLevel)}
	}

	return nil
}
