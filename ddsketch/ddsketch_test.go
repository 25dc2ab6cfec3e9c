package ddsketch_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relerror/ddsketch/ddsketch"
)

func addRange(t *testing.T, s *ddsketch.Sketch, lo, hi int) {
	t.Helper()
	for v := lo; v <= hi; v++ {
		require.NoError(t, s.Add(float64(v), 1))
	}
}

// Scenario 1 & 2 of spec.md §8: integers 1..100, quantiles at 0.50/0.99.
func TestQuantileAccuracyOnIntegerRange(t *testing.T) {
	alpha := 0.01
	s, err := ddsketch.NewDefault(alpha)
	require.NoError(t, err)
	addRange(t, s, 1, 100)

	q50 := s.GetQuantileValue(0.50)
	require.InDelta(t, 50, q50, 0.5)

	q99 := s.GetQuantileValue(0.99)
	require.InDelta(t, 99, q99, 0.99)
}

// Scenario 3.
func TestEmptySketchQuantileIsNaN(t *testing.T) {
	s, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	require.True(t, math.IsNaN(s.GetQuantileValue(0.5)))
}

// Scenario 4: mixed zero/negative/positive values.
func TestMixedZeroNegativePositiveValues(t *testing.T) {
	s, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	require.NoError(t, s.Add(1.0, 1))
	require.NoError(t, s.Add(-1.0, 1))
	require.NoError(t, s.Add(0.0, 1))

	require.Equal(t, 3.0, s.NumValues())
	require.Equal(t, 0.0, s.Sum())
	require.InDelta(t, 0.0, s.GetQuantileValue(0.5), 0.01)
}

// Scenario 5: merge accuracy.
func TestMergeAccuracy(t *testing.T) {
	alpha := 0.01
	a, err := ddsketch.NewDefault(alpha)
	require.NoError(t, err)
	addRange(t, a, 1, 50)

	b, err := ddsketch.NewDefault(alpha)
	require.NoError(t, err)
	addRange(t, b, 51, 100)

	require.NoError(t, a.Merge(b))
	require.InDelta(t, 90, a.GetQuantileValue(0.90), 0.9)
}

func TestMergeFailsOnUnequalGamma(t *testing.T) {
	a, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	b, err := ddsketch.NewDefault(0.05)
	require.NoError(t, err)

	require.ErrorIs(t, a.Merge(b), ddsketch.ErrUnequalGamma)
}

func TestMergeIntoEmptyDeepCopies(t *testing.T) {
	a, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)

	b, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	addRange(t, b, 1, 10)

	require.NoError(t, a.Merge(b))
	require.NoError(t, b.Add(100, 1))

	require.Equal(t, 10.0, a.NumValues())
}

func TestCollapsingBinLimitIsRespected(t *testing.T) {
	s, err := ddsketch.NewCollapsingLowest(0.01, 16)
	require.NoError(t, err)
	addRange(t, s, 1, 10000)

	require.Equal(t, 10000.0, s.NumValues())
	require.True(t, s.IsCollapsed())
}

func TestWireRoundtrip(t *testing.T) {
	s, err := ddsketch.NewDefault(0.02)
	require.NoError(t, err)
	addRange(t, s, 1, 200)
	require.NoError(t, s.Add(-5, 3))

	data := s.Marshal()
	decoded, err := ddsketch.Unmarshal(data)
	require.NoError(t, err)

	require.Equal(t, s.NumValues(), decoded.NumValues())
	require.InDelta(t, s.GetQuantileValue(0.5), decoded.GetQuantileValue(0.5), 1e-9)
}

func TestAddRejectsNonPositiveWeight(t *testing.T) {
	s, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	require.ErrorIs(t, s.Add(1, 0), ddsketch.ErrInvalidWeight)
	require.ErrorIs(t, s.Add(1, -1), ddsketch.ErrInvalidWeight)
}

func TestNewDefaultRejectsInvalidAccuracy(t *testing.T) {
	_, err := ddsketch.NewDefault(0)
	require.Error(t, err)
}

func TestAvgUndefinedOnEmptySketch(t *testing.T) {
	s, err := ddsketch.NewDefault(0.01)
	require.NoError(t, err)
	require.True(t, math.IsNaN(s.Avg()))
}

// TestQuantileAccuracyOnZipfStream mirrors the loki sketch package's
// quantile_test.go style: drive a Zipf-distributed stream through the
// sketch and compare against a parallel sorted ground-truth slice.
func TestQuantileAccuracyOnZipfStream(t *testing.T) {
	alpha := 0.02
	s, err := ddsketch.NewDefault(alpha)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	zipf := rand.NewZipf(rnd, 1.5, 1, 5000)

	var values []float64
	for i := 0; i < 20000; i++ {
		v := float64(zipf.Uint64()) + 1
		require.NoError(t, s.Add(v, 1))
		values = append(values, v)
	}
	sort.Float64s(values)

	for _, q := range []float64{0.5, 0.9, 0.99} {
		rank := int(q * float64(len(values)-1))
		want := values[rank]
		got := s.GetQuantileValue(q)
		tolerance := alpha*want + 1
		require.InDeltaf(t, want, got, tolerance, "q=%v want=%v got=%v", q, want, got)
	}
}
