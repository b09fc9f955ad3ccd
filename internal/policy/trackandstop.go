package policy

import (
	"math"

	"github.com/spachava753/bestarm/internal/models"
)

// Numeric knobs for the allocation solver. Fixed iteration counts keep the
// solve deterministic across platforms and runs.
const (
	bisectIters = 50
	klClamp     = 1e-9
)

// trackAndStop samples arms in the proportions dictated by the optimal
// allocation for the current mean estimates (D-tracking) and stops via a
// generalized likelihood ratio test against a Chernoff-style boundary
// beta(t, delta) = log((K-1)*(1+t)/delta).
type trackAndStop struct {
	params Params
}

func newTrackAndStop(p Params) *trackAndStop {
	return &trackAndStop{params: p}
}

func (t *trackAndStop) Kind() models.PolicyKind {
	return models.PolicyTrackAndStop
}

func (t *trackAndStop) SelectArm(s *State) int {
	// Unpulled arms are infinitely uncertain: sample them first.
	for a := 0; a < s.K; a++ {
		if s.Pulls[a] == 0 {
			return a
		}
	}

	// D-tracking forced exploration keeps every arm's count near sqrt(t)
	// so the mean estimates never starve.
	if float64(s.MinPulls()) < math.Sqrt(float64(s.Step))-float64(s.K)/2 {
		return s.LeastPulled()
	}

	// Pull the arm most under-sampled relative to the optimal target.
	w := t.Allocation(s.Means())
	best := 0
	bestDeficit := math.Inf(-1)
	for a := 0; a < s.K; a++ {
		deficit := float64(s.Step)*w[a] - float64(s.Pulls[a])
		if deficit > bestDeficit {
			best = a
			bestDeficit = deficit
		}
	}
	return best
}

func (t *trackAndStop) ShouldStop(s *State) bool {
	if s.MinPulls() == 0 {
		return false
	}

	best := s.EmpiricalBest()
	muBest := s.Mean(best) + t.params.Epsilon
	if t.params.EnvType == models.EnvBernoulli && muBest > 1 {
		muBest = 1
	}
	nBest := float64(s.Pulls[best])

	threshold := t.boundary(s.Step)
	for a := 0; a < s.K; a++ {
		if a == best {
			continue
		}
		muA := s.Mean(a)
		if muBest <= muA {
			// Non-positive shifted gap: zero evidence against this rival.
			return false
		}
		nA := float64(s.Pulls[a])
		m := (nBest*muBest + nA*muA) / (nBest + nA)
		z := nBest*t.divergence(muBest, m) + nA*t.divergence(muA, m)
		if z <= threshold {
			return false
		}
	}
	return true
}

func (t *trackAndStop) IdentifyBest(s *State) int {
	return s.EmpiricalBest()
}

// boundary is the stopping threshold at time step. The log((K-1)(1+t)/delta)
// form is documented in DESIGN.md.
func (t *trackAndStop) boundary(step int) float64 {
	return math.Log(float64(t.params.K-1) * (1 + float64(step)) / t.params.Delta)
}

// divergence is the per-sample divergence d(x, y) between reward models with
// means x and y: Bernoulli KL, or the scaled squared gap for Gaussian.
func (t *trackAndStop) divergence(x, y float64) float64 {
	if t.params.EnvType == models.EnvGaussian {
		d := x - y
		return d * d / (2 * t.params.Sigma * t.params.Sigma)
	}
	return bernoulliKL(x, y)
}

func bernoulliKL(x, y float64) float64 {
	x = clampUnit(x)
	y = clampUnit(y)
	return x*math.Log(x/y) + (1-x)*math.Log((1-x)/(1-y))
}

// clampUnit keeps Bernoulli means away from 0 and 1 so the KL divergence
// stays finite.
func clampUnit(p float64) float64 {
	return math.Min(math.Max(p, klClamp), 1-klClamp)
}

// Allocation computes the optimal sampling proportions for the given mean
// estimates by solving the track-and-stop balance equations with nested
// bisection. The result always sums to one; degenerate inputs (non-unique
// best arm, zero gaps) fall back to uniform weights rather than erroring.
func (t *trackAndStop) Allocation(mu []float64) []float64 {
	k := len(mu)
	best := 0
	for a := 1; a < k; a++ {
		if mu[a] > mu[best] {
			best = a
		}
	}
	for a := 0; a < k; a++ {
		if a != best && mu[a] == mu[best] {
			return uniformWeights(k)
		}
	}

	// y ranges over (0, min_a d(mu_best, mu_a)); the balance function
	// crosses one inside that interval.
	yMax := math.Inf(1)
	for a := 0; a < k; a++ {
		if a == best {
			continue
		}
		if d := t.divergence(mu[best], mu[a]); d < yMax {
			yMax = d
		}
	}
	if yMax <= 0 || math.IsInf(yMax, 1) {
		return uniformWeights(k)
	}

	lo, hi := 0.0, yMax
	x := make([]float64, k)
	for range bisectIters {
		y := (lo + hi) / 2
		if t.balance(mu, best, y, x) > 1 {
			hi = y
		} else {
			lo = y
		}
	}
	t.balance(mu, best, (lo+hi)/2, x)

	// x holds per-rival ratios w_a / w_best.
	x[best] = 1
	total := 0.0
	for _, v := range x {
		total += v
	}
	w := make([]float64, k)
	for a := range w {
		w[a] = x[a] / total
	}
	return w
}

// balance evaluates sum_a d(mu_best, m_a) / d(mu_a, m_a) at confidence level
// y, filling x with the per-rival allocation ratios it implies.
func (t *trackAndStop) balance(mu []float64, best int, y float64, x []float64) float64 {
	sum := 0.0
	for a := range mu {
		if a == best {
			x[a] = 0
			continue
		}
		x[a] = t.invertRatio(mu[best], mu[a], y)
		m := (mu[best] + x[a]*mu[a]) / (1 + x[a])
		den := t.divergence(mu[a], m)
		if den <= 0 {
			return math.Inf(1)
		}
		sum += t.divergence(mu[best], m) / den
	}
	return sum
}

// invertRatio solves g(x) = d(muB, m) + x*d(muA, m) = y for x, where m is
// the x-weighted mean of muB and muA. g increases from 0 at x=0 towards
// d(muB, muA), so for y below that limit a root exists.
func (t *trackAndStop) invertRatio(muB, muA, y float64) float64 {
	g := func(x float64) float64 {
		m := (muB + x*muA) / (1 + x)
		return t.divergence(muB, m) + x*t.divergence(muA, m)
	}

	hi := 1.0
	for i := 0; i < 60 && g(hi) < y; i++ {
		hi *= 2
	}

	lo := 0.0
	for range bisectIters {
		mid := (lo + hi) / 2
		if g(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func uniformWeights(k int) []float64 {
	w := make([]float64, k)
	for a := range w {
		w[a] = 1 / float64(k)
	}
	return w
}
