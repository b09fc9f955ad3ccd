package environment

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/spachava753/bestarm/internal/models"
)

// Bernoulli is an environment whose arms pay 0/1 rewards with the arm's
// true mean as success probability.
type Bernoulli struct {
	truth
	arms []distuv.Bernoulli
}

// NewBernoulli creates a Bernoulli environment for one run.
func NewBernoulli(k int, difficulty models.Difficulty, seed uint64) (*Bernoulli, error) {
	t, err := newTruth(models.EnvBernoulli, difficulty, k)
	if err != nil {
		return nil, err
	}

	// One generator for the whole run; samples depend only on the seed
	// and the pull sequence.
	src := newSource(seed)
	arms := make([]distuv.Bernoulli, k)
	for i, m := range t.means {
		arms[i] = distuv.Bernoulli{P: m, Src: src}
	}

	return &Bernoulli{truth: t, arms: arms}, nil
}

func (b *Bernoulli) Sample(arm int) (float64, error) {
	if err := b.checkArm(arm); err != nil {
		return 0, err
	}
	return b.arms[arm].Rand(), nil
}
