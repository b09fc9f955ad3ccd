package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/bestarm/internal/config"
	"github.com/spachava753/bestarm/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExperimentConfig(t *testing.T) {
	path := writeConfig(t, `name: demo
results_dir: out
env_type: gaussian
k: 4
difficulty: hard
gaussian_sigma: 0.5
bandit_types:
  - uniform-naive-bonferroni
  - track-and-stop
n_runs: 50
delta: 0.1
epsilon: 0.01
min_pulls_per_arm: 5
max_time_steps: 2000
base_seed: 7
n_concurrent_runs: 8
log_level: debug
plot:
  title: demo sweep
`)

	cfg, err := config.LoadExperimentConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Name)
	assert.Equal(t, "demo", *cfg.Name)
	assert.Equal(t, "out", cfg.ResultsDir)
	assert.Equal(t, models.EnvGaussian, cfg.EnvType)
	assert.Equal(t, 4, cfg.K)
	assert.Equal(t, models.DifficultyHard, cfg.Difficulty)
	assert.Equal(t, 0.5, cfg.GaussianSigma)
	// Dashes are canonicalized to underscores.
	assert.Equal(t, []models.PolicyKind{
		models.PolicyUniformNaiveBonferroni,
		models.PolicyTrackAndStop,
	}, cfg.BanditTypes)
	assert.Equal(t, 50, cfg.NRuns)
	assert.Equal(t, 0.1, cfg.Delta)
	assert.Equal(t, 0.01, cfg.Epsilon)
	assert.Equal(t, 5, cfg.MinPullsPerArm)
	assert.Equal(t, 2000, cfg.MaxTimeSteps)
	assert.Equal(t, int64(7), cfg.BaseSeed)
	assert.Equal(t, 8, cfg.NConcurrentRuns)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "demo sweep", cfg.Plot.Title)
}

func TestLoadExperimentConfigDefaults(t *testing.T) {
	path := writeConfig(t, `env_type: bernoulli
k: 3
difficulty: medium
bandit_types: [track_and_stop]
`)

	cfg, err := config.LoadExperimentConfig(path)
	require.NoError(t, err)

	assert.Nil(t, cfg.Name)
	assert.Equal(t, "results", cfg.ResultsDir)
	assert.Equal(t, 1.0, cfg.GaussianSigma)
	assert.Equal(t, 100, cfg.NRuns)
	assert.Equal(t, 0.05, cfg.Delta)
	assert.Equal(t, 0.0, cfg.Epsilon)
	assert.Equal(t, 1, cfg.MinPullsPerArm)
	assert.Equal(t, 10000, cfg.MaxTimeSteps)
	assert.Equal(t, int64(0), cfg.BaseSeed)
	assert.Equal(t, 1, cfg.NConcurrentRuns)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadExperimentConfigExplicitZeroBudget(t *testing.T) {
	// An explicit zero must survive defaulting: it means "time out
	// immediately", not "use the default budget".
	path := writeConfig(t, `env_type: bernoulli
k: 2
difficulty: easy
bandit_types: [uniform_naive_no_bonferroni]
max_time_steps: 0
`)

	cfg, err := config.LoadExperimentConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxTimeSteps)
}

func TestValidate(t *testing.T) {
	valid := func() models.ExperimentConfig {
		cfg := config.DefaultExperimentConfig()
		cfg.EnvType = models.EnvBernoulli
		cfg.K = 3
		cfg.Difficulty = models.DifficultyMedium
		cfg.BanditTypes = []models.PolicyKind{models.PolicyTrackAndStop}
		return cfg
	}

	require.NoError(t, ptr(valid()).Validate())

	tests := []struct {
		name   string
		mutate func(*models.ExperimentConfig)
		field  string
	}{
		{"empty env type", func(c *models.ExperimentConfig) { c.EnvType = "" }, "env_type"},
		{"k below two", func(c *models.ExperimentConfig) { c.K = 1 }, "k"},
		{"unknown difficulty", func(c *models.ExperimentConfig) { c.Difficulty = "extreme" }, "difficulty"},
		{"zero sigma", func(c *models.ExperimentConfig) { c.GaussianSigma = 0 }, "gaussian_sigma"},
		{"empty bandit types", func(c *models.ExperimentConfig) { c.BanditTypes = nil }, "bandit_types"},
		{"unknown bandit type", func(c *models.ExperimentConfig) { c.BanditTypes = []models.PolicyKind{"ucb1"} }, "bandit_types"},
		{"duplicate bandit type", func(c *models.ExperimentConfig) {
			c.BanditTypes = []models.PolicyKind{"track_and_stop", "track-and-stop"}
		}, "bandit_types"},
		{"zero runs", func(c *models.ExperimentConfig) { c.NRuns = 0 }, "n_runs"},
		{"delta at zero", func(c *models.ExperimentConfig) { c.Delta = 0 }, "delta"},
		{"delta at one", func(c *models.ExperimentConfig) { c.Delta = 1 }, "delta"},
		{"negative epsilon", func(c *models.ExperimentConfig) { c.Epsilon = -1 }, "epsilon"},
		{"zero min pulls", func(c *models.ExperimentConfig) { c.MinPullsPerArm = 0 }, "min_pulls_per_arm"},
		{"negative max steps", func(c *models.ExperimentConfig) { c.MaxTimeSteps = -1 }, "max_time_steps"},
		{"negative workers", func(c *models.ExperimentConfig) { c.NConcurrentRuns = -1 }, "n_concurrent_runs"},
		{"unknown log level", func(c *models.ExperimentConfig) { c.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *models.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
