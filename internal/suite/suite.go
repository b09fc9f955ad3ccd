// Package suite runs an ordered set of experiment scenarios sharing
// defaults, declared in a suite.toml file. Each scenario is its own batch
// with its own results directory under the suite directory.
package suite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/spachava753/bestarm/internal/config"
	"github.com/spachava753/bestarm/internal/executor"
	"github.com/spachava753/bestarm/internal/models"
)

// scenarioFields are the experiment settings a suite may set, all optional
// so unset fields keep the suite defaults (and those the global defaults).
type scenarioFields struct {
	EnvType         *string  `toml:"env_type"`
	K               *int     `toml:"k"`
	Difficulty      *string  `toml:"difficulty"`
	GaussianSigma   *float64 `toml:"gaussian_sigma"`
	BanditTypes     []string `toml:"bandit_types"`
	NRuns           *int     `toml:"n_runs"`
	Delta           *float64 `toml:"delta"`
	Epsilon         *float64 `toml:"epsilon"`
	MinPullsPerArm  *int     `toml:"min_pulls_per_arm"`
	MaxTimeSteps    *int     `toml:"max_time_steps"`
	BaseSeed        *int64   `toml:"base_seed"`
	NConcurrentRuns *int     `toml:"n_concurrent_runs"`
	LogLevel        *string  `toml:"log_level"`
}

type scenarioEntry struct {
	Name string `toml:"name"`
	scenarioFields
}

type suiteFile struct {
	Name      string          `toml:"name"`
	Defaults  scenarioFields  `toml:"defaults"`
	Scenarios []scenarioEntry `toml:"scenario"`
}

// Scenario is one fully merged, validated experiment of a suite.
type Scenario struct {
	Name   string
	Config models.ExperimentConfig
}

// Suite is an ordered set of scenarios.
type Suite struct {
	Name      string
	Scenarios []Scenario
}

// Load parses a suite.toml file and merges each scenario over the suite
// defaults. Every merged scenario must pass full experiment validation.
func Load(path string) (*Suite, error) {
	var sf suiteFile
	if _, err := toml.DecodeFile(path, &sf); err != nil {
		return nil, fmt.Errorf("parsing suite config: %w", err)
	}

	if sf.Name == "" {
		return nil, &models.ConfigurationError{Field: "name", Reason: "suite must have a name"}
	}
	if len(sf.Scenarios) == 0 {
		return nil, &models.ConfigurationError{Field: "scenario", Reason: "suite must list at least one scenario"}
	}

	s := &Suite{Name: sf.Name}
	seen := make(map[string]bool, len(sf.Scenarios))
	for i, entry := range sf.Scenarios {
		if entry.Name == "" {
			return nil, &models.ConfigurationError{Field: "scenario", Reason: fmt.Sprintf("scenario[%d] must have a name", i)}
		}
		if seen[entry.Name] {
			return nil, &models.ConfigurationError{Field: "scenario", Reason: fmt.Sprintf("duplicate scenario name %q", entry.Name)}
		}
		seen[entry.Name] = true

		cfg := config.DefaultExperimentConfig()
		apply(&cfg, sf.Defaults)
		apply(&cfg, entry.scenarioFields)
		name := entry.Name
		cfg.Name = &name

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", entry.Name, err)
		}

		s.Scenarios = append(s.Scenarios, Scenario{Name: entry.Name, Config: cfg})
	}

	return s, nil
}

func apply(cfg *models.ExperimentConfig, f scenarioFields) {
	if f.EnvType != nil {
		cfg.EnvType = models.EnvKind(*f.EnvType)
	}
	if f.K != nil {
		cfg.K = *f.K
	}
	if f.Difficulty != nil {
		cfg.Difficulty = models.Difficulty(*f.Difficulty)
	}
	if f.GaussianSigma != nil {
		cfg.GaussianSigma = *f.GaussianSigma
	}
	if len(f.BanditTypes) > 0 {
		cfg.BanditTypes = make([]models.PolicyKind, len(f.BanditTypes))
		for i, bt := range f.BanditTypes {
			cfg.BanditTypes[i] = models.PolicyKind(bt)
		}
	}
	if f.NRuns != nil {
		cfg.NRuns = *f.NRuns
	}
	if f.Delta != nil {
		cfg.Delta = *f.Delta
	}
	if f.Epsilon != nil {
		cfg.Epsilon = *f.Epsilon
	}
	if f.MinPullsPerArm != nil {
		cfg.MinPullsPerArm = *f.MinPullsPerArm
	}
	if f.MaxTimeSteps != nil {
		cfg.MaxTimeSteps = *f.MaxTimeSteps
	}
	if f.BaseSeed != nil {
		cfg.BaseSeed = *f.BaseSeed
	}
	if f.NConcurrentRuns != nil {
		cfg.NConcurrentRuns = *f.NConcurrentRuns
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
}

// ScenarioOutcome summarizes one scenario's batch for the suite index.
type ScenarioOutcome struct {
	Name          string `json:"name"`
	BatchID       string `json:"batch_id"`
	CompletedRuns int    `json:"completed_runs"`
	FailedRuns    int    `json:"failed_runs"`
	SkippedRuns   int    `json:"skipped_runs"`
	Cancelled     bool   `json:"cancelled"`
}

// Result is the suite-level summary, persisted as index.json.
type Result struct {
	SuiteName string            `json:"suite_name"`
	Dir       string            `json:"dir"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// Run executes scenarios sequentially under resultsDir/<suite name>. A
// scenario whose batch aborts fails the whole suite; per-run failures inside
// a batch do not.
func Run(ctx context.Context, s *Suite, resultsDir string, executorFactory executor.NewRunExecutorFunc) (*Result, error) {
	suiteDir := filepath.Join(resultsDir, s.Name)
	if _, err := os.Stat(suiteDir); err == nil {
		return nil, fmt.Errorf("suite directory already exists: %s (will not overwrite existing results)", suiteDir)
	}
	if err := os.MkdirAll(suiteDir, 0755); err != nil {
		return nil, fmt.Errorf("creating suite directory: %w", err)
	}

	result := &Result{
		SuiteName: s.Name,
		Dir:       suiteDir,
		StartedAt: time.Now(),
	}

	for _, sc := range s.Scenarios {
		slog.Info("starting scenario", "suite", s.Name, "scenario", sc.Name)

		cfg := sc.Config
		cfg.ResultsDir = suiteDir

		orchestrator, err := executor.NewBatchOrchestrator(cfg, executorFactory)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: creating orchestrator: %w", sc.Name, err)
		}

		batch, err := orchestrator.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}

		completed := 0
		for _, runs := range batch.Results {
			completed += len(runs)
		}
		result.Scenarios = append(result.Scenarios, ScenarioOutcome{
			Name:          sc.Name,
			BatchID:       batch.BatchID,
			CompletedRuns: completed,
			FailedRuns:    len(batch.Failures),
			SkippedRuns:   batch.SkippedRuns,
			Cancelled:     batch.Cancelled,
		})

		if ctx.Err() != nil {
			break
		}
	}

	result.EndedAt = time.Now()

	indexJSON, _ := json.MarshalIndent(result, "", "  ")
	os.WriteFile(filepath.Join(suiteDir, "index.json"), indexJSON, 0644)

	return result, nil
}
