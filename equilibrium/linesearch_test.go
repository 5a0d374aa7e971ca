package equilibrium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearFlowVDF reports congested time equal to flow itself, giving phi a
// known closed form for exercising the Brent root finder precisely.
type linearFlowVDF struct{}

func (linearFlowVDF) Apply(outTime, flow, capacity, freeFlow []float64) { copy(outTime, flow) }
func (linearFlowVDF) ApplyDerivative(outTPrime, flow, capacity, freeFlow []float64) {
	for i := range outTPrime {
		outTPrime[i] = 1
	}
}

// almostFlatVDF reports a congested time that barely rises with flow,
// producing a phi with the same sign at both endpoints of [0,1] — the
// "non-strict-convexity" failure case the line search's fallback policy
// handles.
type almostFlatVDF struct{}

func (almostFlatVDF) Apply(outTime, flow, capacity, freeFlow []float64) {
	for i := range outTime {
		outTime[i] = 1 + 0.001*flow[i]
	}
}
func (almostFlatVDF) ApplyDerivative(outTPrime, flow, capacity, freeFlow []float64) {
	for i := range outTPrime {
		outTPrime[i] = 0.001
	}
}

func TestSameSign(t *testing.T) {
	assert.True(t, sameSign(1, 2))
	assert.True(t, sameSign(-1, -2))
	assert.False(t, sameSign(1, -2))
	assert.False(t, sameSign(0, 5))
}

func TestBrentRoot_FindsExactRootOfLinearPhi(t *testing.T) {
	cfg := baseConfig()
	cfg.VDF = linearFlowVDF{}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	s.x[0] = 5
	s.sTotal[0] = -5

	phi0 := s.phi(0)
	phi1 := s.phi(1)
	root, ok := s.brentRoot(phi0, phi1)

	require.True(t, ok)
	assert.InDelta(t, 0.5, root, 1e-6)
}

func TestBrentRoot_EndpointShortcuts(t *testing.T) {
	cfg := baseConfig()
	s, err := NewSolver(cfg)
	require.NoError(t, err)

	root, ok := s.brentRoot(0, 5)
	assert.True(t, ok)
	assert.Equal(t, 0.0, root)

	root, ok = s.brentRoot(5, 0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, root)
}

func TestBrentRoot_SameSignFails(t *testing.T) {
	cfg := baseConfig()
	s, err := NewSolver(cfg)
	require.NoError(t, err)

	_, ok := s.brentRoot(1, 2)
	assert.False(t, ok)
}

func TestLineSearch_MSAShortcut(t *testing.T) {
	cfg := baseConfig()
	cfg.Algorithm = AlgorithmMSA
	s, err := NewSolver(cfg)
	require.NoError(t, err)

	alpha, warnings, retry := s.lineSearch(7)

	assert.Equal(t, 1.0/7.0, alpha)
	assert.Nil(t, warnings)
	assert.False(t, retry)
}

func TestLineSearch_FallbackForcesFWStepOnCFW(t *testing.T) {
	cfg := baseConfig()
	cfg.Algorithm = AlgorithmCFW
	cfg.VDF = almostFlatVDF{}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	s.x[0] = 0
	s.sTotal[0] = 1

	alpha, warnings, retry := s.lineSearch(4)

	assert.True(t, retry)
	assert.Equal(t, 0.0, alpha)
	assert.True(t, s.state.doFWStep)
	assert.True(t, s.state.conjugateFailed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bad conjugate direction")
}

func TestLineSearch_FWAlgorithmAppliesMSAStyleStepOnFallback(t *testing.T) {
	cfg := baseConfig()
	cfg.Algorithm = AlgorithmFW
	cfg.VDF = almostFlatVDF{}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	s.x[0] = 0
	s.sTotal[0] = 1

	alpha, warnings, retry := s.lineSearch(4)

	assert.False(t, retry)
	assert.Equal(t, 0.25, alpha)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "MSA-style step")
}

func TestLineSearch_FallbackSetsBetaSentinelForBFW(t *testing.T) {
	cfg := baseConfig()
	cfg.Algorithm = AlgorithmBFW
	cfg.VDF = almostFlatVDF{}
	s, err := NewSolver(cfg)
	require.NoError(t, err)
	s.x[0] = 0
	s.sTotal[0] = 1

	_, _, retry := s.lineSearch(4)

	assert.True(t, retry)
	assert.Equal(t, float64(betaSentinel), s.state.beta0)
	assert.Equal(t, float64(betaSentinel), s.state.beta1)
	assert.Equal(t, float64(betaSentinel), s.state.beta2)
}
