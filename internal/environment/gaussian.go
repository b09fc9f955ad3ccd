package environment

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/spachava753/bestarm/internal/models"
)

// Gaussian is an environment whose arms pay normally distributed rewards
// with a known standard deviation shared across arms.
type Gaussian struct {
	truth
	arms []distuv.Normal
}

// NewGaussian creates a Gaussian environment for one run.
func NewGaussian(k int, difficulty models.Difficulty, sigma float64, seed uint64) (*Gaussian, error) {
	if sigma <= 0 {
		return nil, &models.ConfigurationError{Field: "gaussian_sigma", Reason: fmt.Sprintf("must be > 0, got %g", sigma)}
	}

	t, err := newTruth(models.EnvGaussian, difficulty, k)
	if err != nil {
		return nil, err
	}

	src := newSource(seed)
	arms := make([]distuv.Normal, k)
	for i, m := range t.means {
		arms[i] = distuv.Normal{Mu: m, Sigma: sigma, Src: src}
	}

	return &Gaussian{truth: t, arms: arms}, nil
}

func (g *Gaussian) Sample(arm int) (float64, error) {
	if err := g.checkArm(arm); err != nil {
		return 0, err
	}
	return g.arms[arm].Rand(), nil
}
