// Package policy implements the bandit decision algorithms under comparison:
// round-robin exploration with an uncorrected or Bonferroni-corrected z-test
// stopping rule, and track-and-stop with a Chernoff-style stopping boundary.
package policy

import (
	"fmt"

	"github.com/spachava753/bestarm/internal/models"
)

// Params configures policy construction for one run.
type Params struct {
	K              int
	Delta          float64
	Epsilon        float64
	MinPullsPerArm int

	// EnvType selects the divergence and variance model; Sigma is the
	// known standard deviation for Gaussian rewards.
	EnvType models.EnvKind
	Sigma   float64
}

// Policy is a stateless decision strategy over a run's State.
type Policy interface {
	// Kind returns the policy variant.
	Kind() models.PolicyKind

	// SelectArm chooses the next arm to pull. It never fails: the result
	// is always a valid arm, ties broken by lowest index.
	SelectArm(s *State) int

	// ShouldStop reports whether the stopping rule fires. It is a pure
	// function of the accumulated statistics; the time-step budget is
	// enforced by the runner, not here.
	ShouldStop(s *State) bool

	// IdentifyBest returns the arm with the highest empirical mean, ties
	// broken by lowest index.
	IdentifyBest(s *State) int
}

// New creates a policy of the given kind. The kind set is closed; unknown
// kinds fail with a ConfigurationError.
func New(kind models.PolicyKind, p Params) (Policy, error) {
	switch kind {
	case models.PolicyUniformNaiveNoBonferroni:
		return newUniformNaive(p, false), nil
	case models.PolicyUniformNaiveBonferroni:
		return newUniformNaive(p, true), nil
	case models.PolicyTrackAndStop:
		return newTrackAndStop(p), nil
	default:
		return nil, &models.ConfigurationError{Field: "bandit_types", Reason: fmt.Sprintf("unknown bandit type %q", kind)}
	}
}
