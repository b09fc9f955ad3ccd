package executor

import (
	"context"
	"fmt"

	"github.com/spachava753/bestarm/internal/environment"
	"github.com/spachava753/bestarm/internal/models"
	"github.com/spachava753/bestarm/internal/policy"
)

// RunExecutor executes a single run and returns the result.
type RunExecutor interface {
	Execute(ctx context.Context, spec models.RunSpec) (*models.RunResult, error)
}

// NewRunExecutorFunc creates a RunExecutor from an ExperimentConfig.
type NewRunExecutorFunc func(cfg models.ExperimentConfig) RunExecutor

// DefaultRunExecutor builds one environment and one policy per run from the
// experiment config and the run's seed, then drives the round loop.
type DefaultRunExecutor struct {
	cfg models.ExperimentConfig
}

// NewRunExecutor creates the default run executor.
func NewRunExecutor(cfg models.ExperimentConfig) *DefaultRunExecutor {
	return &DefaultRunExecutor{cfg: cfg}
}

// DefaultRunExecutorFunc creates a default run executor.
func DefaultRunExecutorFunc(cfg models.ExperimentConfig) RunExecutor {
	return NewRunExecutor(cfg)
}

// Execute runs one complete run and returns its result.
func (e *DefaultRunExecutor) Execute(ctx context.Context, spec models.RunSpec) (*models.RunResult, error) {
	env, err := environment.New(e.cfg.EnvType, e.cfg.K, e.cfg.Difficulty, e.cfg.GaussianSigma, uint64(spec.Seed))
	if err != nil {
		return nil, fmt.Errorf("creating environment: %w", err)
	}

	pol, err := policy.New(spec.Policy, policy.Params{
		K:              e.cfg.K,
		Delta:          e.cfg.Delta,
		Epsilon:        e.cfg.Epsilon,
		MinPullsPerArm: e.cfg.MinPullsPerArm,
		EnvType:        e.cfg.EnvType,
		Sigma:          e.cfg.GaussianSigma,
	})
	if err != nil {
		return nil, fmt.Errorf("creating policy: %w", err)
	}

	return Run(ctx, env, pol, e.cfg.MaxTimeSteps, spec)
}

// Run drives the per-run state machine: RUNNING until the policy's stopping
// rule fires (STOPPED) or the time-step budget is exhausted (TIMED_OUT). A
// timed-out run is a valid result, not a failure. The run owns its state and
// environment exclusively; the loop performs no I/O and, once started, runs
// to its own termination.
func Run(ctx context.Context, env environment.Environment, pol policy.Policy, maxTimeSteps int, spec models.RunSpec) (*models.RunResult, error) {
	state := policy.NewState(env.K())
	trueMeans := env.TrueMeans()
	bestMean := env.BestMean()

	regrets := make([]float64, 0, maxTimeSteps)
	cumRegret := 0.0

	for state.Step < maxTimeSteps {
		arm := pol.SelectArm(state)
		if arm < 0 || arm >= env.K() {
			return nil, &models.InvalidArmError{Arm: arm, K: env.K()}
		}

		reward, err := env.Sample(arm)
		if err != nil {
			return nil, fmt.Errorf("sampling arm %d: %w", arm, err)
		}

		state.Record(arm, reward)
		cumRegret += bestMean - trueMeans[arm]
		regrets = append(regrets, cumRegret)

		if pol.ShouldStop(state) {
			state.Stopped = true
			break
		}
	}

	result := &models.RunResult{
		Policy:            spec.Policy,
		RunIndex:          spec.RunIndex,
		Seed:              spec.Seed,
		Status:            models.RunTimedOut,
		Stopped:           state.Stopped,
		Steps:             state.Step,
		Pulls:             state.Pulls,
		CumulativeRegrets: regrets,
	}
	if state.Stopped {
		result.Status = models.RunStopped
	}
	if state.Step > 0 {
		best := pol.IdentifyBest(state)
		state.Best = &best
		result.BestArm = &best
	}
	return result, nil
}
