package policy

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/spachava753/bestarm/internal/models"
)

// uniformNaive explores arms round-robin and stops once a fixed-confidence
// z-test separates the empirical best arm from every rival. The corrected
// variant applies a Bonferroni adjustment over the K-1 comparisons.
type uniformNaive struct {
	params     Params
	bonferroni bool
	zCrit      float64
}

func newUniformNaive(p Params, bonferroni bool) *uniformNaive {
	level := p.Delta
	if bonferroni {
		level = p.Delta / float64(p.K-1)
	}
	return &uniformNaive{
		params:     p,
		bonferroni: bonferroni,
		zCrit:      distuv.UnitNormal.Quantile(1 - level),
	}
}

func (u *uniformNaive) Kind() models.PolicyKind {
	if u.bonferroni {
		return models.PolicyUniformNaiveBonferroni
	}
	return models.PolicyUniformNaiveNoBonferroni
}

func (u *uniformNaive) SelectArm(s *State) int {
	return s.LeastPulled()
}

func (u *uniformNaive) ShouldStop(s *State) bool {
	if s.MinPulls() < u.params.MinPullsPerArm {
		return false
	}

	best := s.EmpiricalBest()
	for a := 0; a < s.K; a++ {
		if a == best {
			continue
		}
		if !u.separates(s, best, a) {
			return false
		}
	}
	return true
}

// separates runs a one-sided two-sample z-test of arm best against rival a,
// shifted by the indifference margin epsilon.
func (u *uniformNaive) separates(s *State, best, a int) bool {
	diff := s.Mean(best) - s.Mean(a) + u.params.Epsilon
	se := math.Sqrt(u.variance(s, best)/float64(s.Pulls[best]) + u.variance(s, a)/float64(s.Pulls[a]))
	if se == 0 {
		// Degenerate samples carry no noise; the sign of the gap decides.
		return diff > 0
	}
	return diff/se > u.zCrit
}

// variance is the per-sample reward variance model: the Bernoulli plug-in
// estimate, or the known sigma^2 for Gaussian rewards.
func (u *uniformNaive) variance(s *State, arm int) float64 {
	if u.params.EnvType == models.EnvGaussian {
		return u.params.Sigma * u.params.Sigma
	}
	p := s.Mean(arm)
	return p * (1 - p)
}

func (u *uniformNaive) IdentifyBest(s *State) int {
	return s.EmpiricalBest()
}
