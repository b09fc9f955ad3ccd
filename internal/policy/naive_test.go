package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/bestarm/internal/models"
	"github.com/spachava753/bestarm/internal/policy"
)

func naiveParams(k int) policy.Params {
	return policy.Params{
		K:              k,
		Delta:          0.05,
		MinPullsPerArm: 10,
		EnvType:        models.EnvBernoulli,
		Sigma:          1.0,
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := policy.New("thompson", naiveParams(3))
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bandit_types", cfgErr.Field)
}

func TestRoundRobinSelection(t *testing.T) {
	p, err := policy.New(models.PolicyUniformNaiveNoBonferroni, naiveParams(3))
	require.NoError(t, err)

	s := policy.NewState(3)
	for round := 0; round < 12; round++ {
		arm := p.SelectArm(s)
		assert.Equal(t, round%3, arm, "round %d", round)
		s.Record(arm, 0)
	}

	// After m*K rounds every arm has exactly m pulls.
	assert.Equal(t, []int{4, 4, 4}, s.Pulls)
}

func TestNaiveStopGatedOnMinPulls(t *testing.T) {
	p, err := policy.New(models.PolicyUniformNaiveNoBonferroni, naiveParams(2))
	require.NoError(t, err)

	// Perfectly separated arms, but below the forced exploration floor.
	s := policy.NewState(2)
	for i := 0; i < 9; i++ {
		s.Record(0, 1)
		s.Record(1, 0)
	}
	assert.False(t, p.ShouldStop(s))

	s.Record(0, 1)
	s.Record(1, 0)
	assert.True(t, p.ShouldStop(s))
}

func TestBonferroniIsStricter(t *testing.T) {
	// Borderline evidence: z ~= 1.06 sits between the uncorrected
	// critical value z(0.8) ~= 0.84 and the corrected z(0.9) ~= 1.28.
	params := policy.Params{
		K:              3,
		Delta:          0.2,
		MinPullsPerArm: 1,
		EnvType:        models.EnvGaussian,
		Sigma:          1.0,
	}

	s := policy.NewState(3)
	for i := 0; i < 100; i++ {
		s.Record(0, 0.15)
		s.Record(1, 0)
		s.Record(2, 0)
	}

	uncorrected, err := policy.New(models.PolicyUniformNaiveNoBonferroni, params)
	require.NoError(t, err)
	corrected, err := policy.New(models.PolicyUniformNaiveBonferroni, params)
	require.NoError(t, err)

	assert.True(t, uncorrected.ShouldStop(s))
	assert.False(t, corrected.ShouldStop(s))
}

func TestEpsilonRelaxesStopping(t *testing.T) {
	base := policy.Params{
		K:              2,
		Delta:          0.05,
		MinPullsPerArm: 1,
		EnvType:        models.EnvGaussian,
		Sigma:          1.0,
	}

	s := policy.NewState(2)
	for i := 0; i < 100; i++ {
		s.Record(0, 0)
		s.Record(1, 0)
	}

	strict, err := policy.New(models.PolicyUniformNaiveNoBonferroni, base)
	require.NoError(t, err)
	assert.False(t, strict.ShouldStop(s), "equal means without margin must not stop")

	relaxed := base
	relaxed.Epsilon = 1.0
	indifferent, err := policy.New(models.PolicyUniformNaiveNoBonferroni, relaxed)
	require.NoError(t, err)
	assert.True(t, indifferent.ShouldStop(s), "a wide indifference margin accepts either arm")
}

func TestIdentifyBestTieBreaksLowestIndex(t *testing.T) {
	p, err := policy.New(models.PolicyUniformNaiveNoBonferroni, naiveParams(3))
	require.NoError(t, err)

	s := policy.NewState(3)
	s.Record(1, 1)
	s.Record(2, 1)

	// Arms 1 and 2 tie; arm 0 is unpulled and excluded.
	assert.Equal(t, 1, p.IdentifyBest(s))
}
