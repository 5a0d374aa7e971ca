package equilibrium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkLoads_ZeroInitialized(t *testing.T) {
	ll := NewLinkLoads(3, 2, "time")
	require.Len(t, ll.Values, 3)
	for _, row := range ll.Values {
		assert.Equal(t, []float64{0, 0}, row)
	}
	require.Len(t, ll.Skims, 1)
	assert.Equal(t, "time", ll.Skims[0].Name)
	assert.Len(t, ll.Skims[0].Values, 3)
}

func TestLinkLoads_TotalLinkLoadsRowSums(t *testing.T) {
	ll := NewLinkLoads(2, 2)
	ll.Values[0] = []float64{3, 4}
	ll.Values[1] = []float64{1, 1}

	assert.Equal(t, []float64{7, 2}, ll.TotalLinkLoads())
	assert.Equal(t, 9.0, ll.TotalFlow())
}

func TestLinkLoads_ResetZeroesValuesAndSkims(t *testing.T) {
	ll := NewLinkLoads(2, 1, "t")
	ll.Values[0][0] = 5
	ll.Skims[0].Values[0][0] = 9

	ll.Reset()

	assert.Equal(t, 0.0, ll.Values[0][0])
	assert.Equal(t, 0.0, ll.Skims[0].Values[0][0])
}

func TestLinkLoads_CopyFromCopiesValuesAndSkims(t *testing.T) {
	src := NewLinkLoads(2, 1, "t")
	src.Values[0][0] = 5
	src.Values[1][0] = 7
	src.Skims[0].Values[0][0] = 1.5

	dst := NewLinkLoads(2, 1, "t")
	dst.CopyFrom(src)

	assert.Equal(t, src.Values, dst.Values)
	assert.Equal(t, src.Skims[0].Values, dst.Skims[0].Values)

	// Mutating src afterwards must not alias dst.
	src.Values[0][0] = 100
	assert.Equal(t, 5.0, dst.Values[0][0])
}

func TestCombine_LinearCombinationOfTwoMatrices(t *testing.T) {
	dst := [][]float64{{10, 0}, {4, 4}}
	src := [][]float64{{0, 10}, {0, 4}}

	combine(dst, src, 0.5, 0.5)

	assert.Equal(t, [][]float64{{5, 5}, {2, 4}}, dst)
}
