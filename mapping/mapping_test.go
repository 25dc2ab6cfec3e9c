package mapping_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relerror/ddsketch/mapping"
)

func TestNewLogarithmicRejectsInvalidAccuracy(t *testing.T) {
	_, err := mapping.NewLogarithmic(0, 0)
	require.ErrorIs(t, err, mapping.ErrInvalidRelativeAccuracy)

	_, err = mapping.NewLogarithmic(1, 0)
	require.ErrorIs(t, err, mapping.ErrInvalidRelativeAccuracy)

	_, err = mapping.NewLogarithmic(-0.1, 0)
	require.ErrorIs(t, err, mapping.ErrInvalidRelativeAccuracy)
}

// relativeErrorWithinBound is the accuracy property of spec.md §8 invariant
// 1: for values within the indexable range, value(key(v)) stays within
// alpha of v.
func relativeErrorWithinBound(t *testing.T, m mapping.IndexMapping, alpha float64) {
	t.Helper()
	values := []float64{1e-6, 1e-3, 0.5, 1, 2, 3.7, 10, 100, 1e6, 1e12}
	for _, v := range values {
		k := m.Index(v)
		got := m.Value(k)
		require.InEpsilonf(t, v, got, alpha, "value(key(%v)) = %v", v, got)
	}
}

func TestLogarithmicRelativeError(t *testing.T) {
	alpha := 0.01
	m, err := mapping.NewLogarithmic(alpha, 0)
	require.NoError(t, err)
	relativeErrorWithinBound(t, m, alpha)
}

func TestLinearRelativeError(t *testing.T) {
	alpha := 0.02
	m, err := mapping.NewLinear(alpha, 0)
	require.NoError(t, err)
	relativeErrorWithinBound(t, m, alpha)
}

func TestCubicRelativeError(t *testing.T) {
	alpha := 0.01
	m, err := mapping.NewCubic(alpha, 0)
	require.NoError(t, err)
	relativeErrorWithinBound(t, m, alpha)
}

func TestIndexIsMonotonic(t *testing.T) {
	m, err := mapping.NewLogarithmic(0.01, 0)
	require.NoError(t, err)

	prev := m.Index(m.MinIndexableValue() * 1.0000001)
	for v := 0.01; v < 1e6; v *= 1.37 {
		if v <= m.MinIndexableValue() {
			continue
		}
		k := m.Index(v)
		require.GreaterOrEqual(t, k, prev)
		prev = k
	}
}

func TestFromWireDispatchesOnInterpolation(t *testing.T) {
	log, err := mapping.NewLogarithmic(0.01, 0)
	require.NoError(t, err)
	lin, err := mapping.NewLinear(0.01, 0)
	require.NoError(t, err)
	cub, err := mapping.NewCubic(0.01, 0)
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		m    mapping.IndexMapping
	}{
		{"logarithmic", log},
		{"linear", lin},
		{"cubic", cub},
	} {
		got, err := mapping.FromWire(tc.m.Interpolation(), tc.m.Gamma(), 0)
		require.NoErrorf(t, err, tc.name)
		require.Truef(t, got.Equals(tc.m), "%s: reconstructed mapping should equal original", tc.name)
	}
}

func TestFromWireRejectsUnknownInterpolation(t *testing.T) {
	_, err := mapping.FromWire(42, 1.02, 0)
	require.Error(t, err)
}

func TestGammaMatchesRelativeAccuracy(t *testing.T) {
	alpha := 0.015
	m, err := mapping.NewLogarithmic(alpha, 0)
	require.NoError(t, err)
	require.InDelta(t, alpha, m.RelativeAccuracy(), 1e-12)
	require.InDelta(t, (1+alpha)/(1-alpha), m.Gamma(), 1e-12)
}

func TestMinIndexableIsAboveSmallestNormal(t *testing.T) {
	m, err := mapping.NewLogarithmic(0.01, 0)
	require.NoError(t, err)
	require.Greater(t, m.MinIndexableValue(), 0x1p-1022)
	require.False(t, math.IsInf(m.MaxIndexableValue(), 0))
}
