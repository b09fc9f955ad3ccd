// Package environment simulates the reward side of a bandit experiment.
// An environment holds K hidden true means and answers one stochastic reward
// per pull, deterministically given its seed and the pull sequence.
package environment

import (
	"fmt"
	"math/rand/v2"

	"github.com/spachava753/bestarm/internal/models"
)

// Environment produces one reward sample per (arm, pull). It owns no mutable
// state besides its random generator, which belongs to a single run.
type Environment interface {
	// Kind returns the distribution family.
	Kind() models.EnvKind

	// K returns the number of arms.
	K() int

	// TrueMeans returns a copy of the hidden arm means.
	TrueMeans() []float64

	// BestArm returns the index of the arm with the highest true mean.
	BestArm() int

	// BestMean returns the highest true mean.
	BestMean() float64

	// Gap returns the margin between the best and second-best true mean.
	Gap() float64

	// Sample draws one reward for the given arm. It fails with
	// InvalidArmError when arm is outside [0, K).
	Sample(arm int) (float64, error)
}

// meanTable fixes the true means for one (kind, difficulty) pair. Arm 0
// holds the best mean, arm 1 holds best-gap, and the remaining arms are
// evenly spaced from best-gap down to low. The tables are shared by every
// run so regret numbers stay comparable across policies and batches.
type meanTable struct {
	best float64
	gap  float64
	low  float64
}

var meanTables = map[models.EnvKind]map[models.Difficulty]meanTable{
	models.EnvBernoulli: {
		models.DifficultyEasy:   {best: 0.90, gap: 0.40, low: 0.10},
		models.DifficultyMedium: {best: 0.80, gap: 0.20, low: 0.20},
		models.DifficultyHard:   {best: 0.70, gap: 0.05, low: 0.35},
	},
	models.EnvGaussian: {
		models.DifficultyEasy:   {best: 1.00, gap: 0.80, low: -1.00},
		models.DifficultyMedium: {best: 1.00, gap: 0.40, low: -0.50},
		models.DifficultyHard:   {best: 1.00, gap: 0.15, low: 0.00},
	},
}

// TrueMeans expands the fixed difficulty table to K arm means.
func TrueMeans(kind models.EnvKind, difficulty models.Difficulty, k int) ([]float64, error) {
	if k < 2 {
		return nil, &models.ConfigurationError{Field: "k", Reason: fmt.Sprintf("must be >= 2, got %d", k)}
	}

	tables, ok := meanTables[kind]
	if !ok {
		return nil, &models.ConfigurationError{Field: "env_type", Reason: fmt.Sprintf("unknown environment kind %q", kind)}
	}
	tbl, ok := tables[difficulty]
	if !ok {
		return nil, &models.ConfigurationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %q", difficulty)}
	}

	means := make([]float64, k)
	means[0] = tbl.best
	means[1] = tbl.best - tbl.gap
	for i := 2; i < k; i++ {
		frac := float64(i-1) / float64(k-2)
		means[i] = means[1] + frac*(tbl.low-means[1])
	}
	return means, nil
}

// New constructs the environment for one run. The seed must be the run's
// own seed; the returned environment's generator is never shared.
func New(kind models.EnvKind, k int, difficulty models.Difficulty, sigma float64, seed uint64) (Environment, error) {
	switch kind {
	case models.EnvBernoulli:
		return NewBernoulli(k, difficulty, seed)
	case models.EnvGaussian:
		return NewGaussian(k, difficulty, sigma, seed)
	default:
		return nil, &models.ConfigurationError{Field: "env_type", Reason: fmt.Sprintf("unknown environment kind %q", kind)}
	}
}

// truth carries the hidden means shared by both environment kinds.
type truth struct {
	kind  models.EnvKind
	means []float64
}

func newTruth(kind models.EnvKind, difficulty models.Difficulty, k int) (truth, error) {
	means, err := TrueMeans(kind, difficulty, k)
	if err != nil {
		return truth{}, err
	}
	return truth{kind: kind, means: means}, nil
}

func (t truth) Kind() models.EnvKind { return t.kind }

func (t truth) K() int { return len(t.means) }

func (t truth) TrueMeans() []float64 {
	out := make([]float64, len(t.means))
	copy(out, t.means)
	return out
}

func (t truth) BestArm() int {
	best := 0
	for i, m := range t.means {
		if m > t.means[best] {
			best = i
		}
	}
	return best
}

func (t truth) BestMean() float64 { return t.means[t.BestArm()] }

func (t truth) Gap() float64 {
	best := t.BestArm()
	second := -1
	for i, m := range t.means {
		if i == best {
			continue
		}
		if second < 0 || m > t.means[second] {
			second = i
		}
	}
	return t.means[best] - t.means[second]
}

func (t truth) checkArm(arm int) error {
	if arm < 0 || arm >= len(t.means) {
		return &models.InvalidArmError{Arm: arm, K: len(t.means)}
	}
	return nil
}

// Truth builds the EnvironmentTruth snapshot recorded with a batch.
func Truth(kind models.EnvKind, difficulty models.Difficulty, k int) (models.EnvironmentTruth, error) {
	t, err := newTruth(kind, difficulty, k)
	if err != nil {
		return models.EnvironmentTruth{}, err
	}
	return models.EnvironmentTruth{
		TrueMeans: t.TrueMeans(),
		BestArm:   t.BestArm(),
		BestMean:  t.BestMean(),
		Gap:       t.Gap(),
	}, nil
}

func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed)
}
