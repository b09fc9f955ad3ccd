package suite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/bestarm/internal/executor"
	"github.com/spachava753/bestarm/internal/models"
	"github.com/spachava753/bestarm/internal/suite"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	s, err := suite.Load(filepath.Join(projectRoot, "testdata", "suite.toml"))
	require.NoError(t, err)

	assert.Equal(t, "bernoulli-sweep", s.Name)
	require.Len(t, s.Scenarios, 2)

	first := s.Scenarios[0]
	assert.Equal(t, "k3-easy", first.Name)
	assert.Equal(t, models.EnvBernoulli, first.Config.EnvType)
	assert.Equal(t, 3, first.Config.K)
	assert.Equal(t, models.DifficultyEasy, first.Config.Difficulty)
	// Suite defaults fill unset scenario fields.
	assert.Equal(t, 2, first.Config.NRuns)
	assert.Equal(t, 5, first.Config.MinPullsPerArm)
	assert.Equal(t, 2000, first.Config.MaxTimeSteps)
	assert.Equal(t, int64(42), first.Config.BaseSeed)
	// Global defaults fill the rest.
	assert.Equal(t, 1.0, first.Config.GaussianSigma)
	assert.Equal(t, 1, first.Config.NConcurrentRuns)

	second := s.Scenarios[1]
	assert.Equal(t, 4, second.Config.K)
	assert.Equal(t, []models.PolicyKind{
		models.PolicyUniformNaiveBonferroni,
		models.PolicyTrackAndStop,
	}, second.Config.BanditTypes)
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing suite name",
			content: `[[scenario]]
name = "a"
`,
		},
		{
			name: "missing scenario name",
			content: `name = "s"

[[scenario]]
k = 3
`,
		},
		{
			name: "duplicate scenario name",
			content: `name = "s"

[defaults]
env_type = "bernoulli"
k = 3
difficulty = "easy"
bandit_types = ["track_and_stop"]

[[scenario]]
name = "a"

[[scenario]]
name = "a"
`,
		},
		{
			name: "scenario fails validation",
			content: `name = "s"

[defaults]
env_type = "bernoulli"
difficulty = "easy"
bandit_types = ["track_and_stop"]

[[scenario]]
name = "a"
k = 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := suite.Load(writeSuite(t, tt.content))
			require.Error(t, err)
		})
	}
}

// stubRunExecutor returns a minimal completed run.
type stubRunExecutor struct {
	k int
}

func (s *stubRunExecutor) Execute(ctx context.Context, spec models.RunSpec) (*models.RunResult, error) {
	best := 0
	return &models.RunResult{
		Policy:            spec.Policy,
		RunIndex:          spec.RunIndex,
		Seed:              spec.Seed,
		Status:            models.RunStopped,
		Stopped:           true,
		Steps:             1,
		Pulls:             append([]int{1}, make([]int, s.k-1)...),
		CumulativeRegrets: []float64{0},
		BestArm:           &best,
	}, nil
}

func TestRunWritesIndex(t *testing.T) {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	s, err := suite.Load(filepath.Join(projectRoot, "testdata", "suite.toml"))
	require.NoError(t, err)

	resultsDir := t.TempDir()
	factory := func(cfg models.ExperimentConfig) executor.RunExecutor {
		return &stubRunExecutor{k: cfg.K}
	}

	result, err := suite.Run(context.Background(), s, resultsDir, factory)
	require.NoError(t, err)

	assert.Equal(t, "bernoulli-sweep", result.SuiteName)
	require.Len(t, result.Scenarios, 2)
	for _, sc := range result.Scenarios {
		assert.Equal(t, 0, sc.FailedRuns)
		assert.False(t, sc.Cancelled)
		assert.NotEmpty(t, sc.BatchID)
	}
	// Two policies x two runs per scenario.
	assert.Equal(t, 4, result.Scenarios[0].CompletedRuns)

	assert.FileExists(t, filepath.Join(resultsDir, "bernoulli-sweep", "index.json"))
	assert.DirExists(t, filepath.Join(resultsDir, "bernoulli-sweep", "k3-easy"))
	assert.DirExists(t, filepath.Join(resultsDir, "bernoulli-sweep", "k4-medium"))
}

func TestRunOverwriteProtection(t *testing.T) {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	s, err := suite.Load(filepath.Join(projectRoot, "testdata", "suite.toml"))
	require.NoError(t, err)

	resultsDir := t.TempDir()
	factory := func(cfg models.ExperimentConfig) executor.RunExecutor {
		return &stubRunExecutor{k: cfg.K}
	}

	_, err = suite.Run(context.Background(), s, resultsDir, factory)
	require.NoError(t, err)

	_, err = suite.Run(context.Background(), s, resultsDir, factory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
