package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spachava753/bestarm/internal/environment"
	"github.com/spachava753/bestarm/internal/models"
	"github.com/spachava753/bestarm/internal/report"
)

// BatchOrchestrator coordinates the execution of all runs in a batch.
type BatchOrchestrator struct {
	cfg         models.ExperimentConfig
	newExecutor NewRunExecutorFunc
}

// NewBatchOrchestrator validates the configuration and creates a new batch
// orchestrator. Validation failures abort before any run executes.
func NewBatchOrchestrator(cfg models.ExperimentConfig, executorFactory NewRunExecutorFunc) (*BatchOrchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &BatchOrchestrator{
		cfg:         cfg,
		newExecutor: executorFactory,
	}, nil
}

// Run executes every configured (policy, run index) pair and writes the
// batch artifacts. Context cancellation stops scheduling new runs; runs
// already in flight finish, and unscheduled runs are counted as skipped.
func (o *BatchOrchestrator) Run(ctx context.Context) (*models.BatchResult, error) {
	startTime := time.Now()

	truth, err := environment.Truth(o.cfg.EnvType, o.cfg.Difficulty, o.cfg.K)
	if err != nil {
		return nil, fmt.Errorf("resolving environment truth: %w", err)
	}

	// Create batch output directory
	batchName := time.Now().Format("2006-01-02__15-04-05")
	if o.cfg.Name != nil {
		batchName = *o.cfg.Name
	}
	batchDir := filepath.Join(o.cfg.ResultsDir, batchName)

	if _, err := os.Stat(batchDir); err == nil {
		return nil, fmt.Errorf("batch directory already exists: %s (will not overwrite existing results)", batchDir)
	}

	if err := os.MkdirAll(batchDir, 0755); err != nil {
		return nil, fmt.Errorf("creating batch directory: %w", err)
	}

	// Save experiment config as run
	cfgJSON, _ := json.MarshalIndent(o.cfg, "", "  ")
	os.WriteFile(filepath.Join(batchDir, "config.json"), cfgJSON, 0644)

	specs := make([]models.RunSpec, 0, len(o.cfg.BanditTypes)*o.cfg.NRuns)
	for _, kind := range o.cfg.BanditTypes {
		for i := 0; i < o.cfg.NRuns; i++ {
			specs = append(specs, models.RunSpec{
				Policy:   kind,
				RunIndex: i,
				Seed:     o.cfg.BaseSeed + int64(i),
			})
		}
	}

	slog.Info("starting batch",
		"name", batchName,
		"env_type", o.cfg.EnvType,
		"k", o.cfg.K,
		"difficulty", o.cfg.Difficulty,
		"policies", len(o.cfg.BanditTypes),
		"runs_per_policy", o.cfg.NRuns)

	results, failures, skipped := o.runConcurrent(ctx, specs)

	batch := &models.BatchResult{
		BatchID:     uuid.NewString(),
		Name:        batchName,
		SkippedRuns: skipped,
		Cancelled:   skipped > 0,
		StartedAt:   startTime,
		EndedAt:     time.Now(),
		Truth:       truth,
		Policies:    append([]models.PolicyKind(nil), o.cfg.BanditTypes...),
		Results:     make(map[models.PolicyKind][]models.RunResult, len(o.cfg.BanditTypes)),
		Failures:    failures,
	}
	for pi, kind := range o.cfg.BanditTypes {
		runs := make([]models.RunResult, 0, o.cfg.NRuns)
		for _, res := range results[pi] {
			if res != nil {
				runs = append(runs, *res)
			}
		}
		batch.Results[kind] = runs
	}

	// Save full run records and failures
	runsJSON, _ := json.MarshalIndent(struct {
		Results  map[models.PolicyKind][]models.RunResult `json:"results"`
		Failures []models.RunFailure                      `json:"failures"`
	}{batch.Results, batch.Failures}, "", "  ")
	os.WriteFile(filepath.Join(batchDir, "runs.json"), runsJSON, 0644)

	// Aggregate and save the batch report
	rep := report.Build(batch)
	repJSON, _ := json.MarshalIndent(rep, "", "  ")
	os.WriteFile(filepath.Join(batchDir, "results.json"), repJSON, 0644)

	plotPath := o.cfg.Plot.Path
	if plotPath == "" {
		plotPath = filepath.Join(batchDir, "regret.png")
	}
	plotTitle := o.cfg.Plot.Title
	if plotTitle == "" {
		plotTitle = batchName
	}
	if err := report.RenderRegretPlot(rep, plotTitle, plotPath); err != nil {
		slog.Error("rendering regret plot", "path", plotPath, "error", err)
	}

	slog.Info("batch finished",
		"name", batchName,
		"completed", countResults(batch),
		"failed", len(batch.Failures),
		"skipped", batch.SkippedRuns)

	return batch, nil
}

// runConcurrent executes runs on a bounded worker pool. Results land in
// per-spec slots so parallel and serial execution produce identical output.
func (o *BatchOrchestrator) runConcurrent(ctx context.Context, specs []models.RunSpec) ([][]*models.RunResult, []models.RunFailure, int) {
	nWorkers := o.cfg.NConcurrentRuns
	if nWorkers <= 0 {
		nWorkers = 1
	}

	nPolicies := len(o.cfg.BanditTypes)
	results := make([][]*models.RunResult, nPolicies)
	failureSlots := make([][]*models.RunFailure, nPolicies)
	for pi := range results {
		results[pi] = make([]*models.RunResult, o.cfg.NRuns)
		failureSlots[pi] = make([]*models.RunFailure, o.cfg.NRuns)
	}

	var g errgroup.Group
	g.SetLimit(nWorkers)

	scheduled := 0
feed:
	for _, spec := range specs {
		select {
		case <-ctx.Done():
			break feed
		default:
		}
		scheduled++

		pi := o.policyIndex(spec.Policy)
		g.Go(func() error {
			result, err := o.executeOne(ctx, spec)
			if err != nil {
				slog.Error("run failed", "policy", spec.Policy, "run_index", spec.RunIndex, "error", err)
				failureSlots[pi][spec.RunIndex] = &models.RunFailure{
					Policy:   spec.Policy,
					RunIndex: spec.RunIndex,
					Seed:     spec.Seed,
					Error: models.RunError{
						Type:    classifyRunError(err),
						Message: err.Error(),
					},
				}
				return nil
			}
			slog.Debug("run finished",
				"policy", spec.Policy,
				"run_index", spec.RunIndex,
				"status", result.Status,
				"steps", result.Steps)
			results[pi][spec.RunIndex] = result
			return nil
		})
	}

	g.Wait()

	var failures []models.RunFailure
	for pi := range failureSlots {
		for _, f := range failureSlots[pi] {
			if f != nil {
				failures = append(failures, *f)
			}
		}
	}

	skipped := len(specs) - scheduled
	return results, failures, skipped
}

// executeOne runs a single spec, converting a panic into an error so one
// broken run cannot take down the batch.
func (o *BatchOrchestrator) executeOne(ctx context.Context, spec models.RunSpec) (result *models.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("run panicked: %v", r)
		}
	}()

	executor := o.newExecutor(o.cfg)
	return executor.Execute(ctx, spec)
}

func (o *BatchOrchestrator) policyIndex(kind models.PolicyKind) int {
	for i, k := range o.cfg.BanditTypes {
		if k == kind {
			return i
		}
	}
	return -1
}

func classifyRunError(err error) models.ErrorType {
	var invalidArm *models.InvalidArmError
	if errors.As(err, &invalidArm) {
		return models.ErrInvalidArm
	}
	if strings.Contains(err.Error(), "sampling arm") {
		return models.ErrEnvironmentSampleFailed
	}
	return models.ErrInternalError
}

func countResults(batch *models.BatchResult) int {
	n := 0
	for _, runs := range batch.Results {
		n += len(runs)
	}
	return n
}
