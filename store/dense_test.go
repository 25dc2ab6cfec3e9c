package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relerror/ddsketch/store"
)

func TestDenseStoreAddAndQuery(t *testing.T) {
	s := store.NewDenseStore()
	require.True(t, s.IsEmpty())

	s.Add(5, 2)
	s.Add(-3, 1)
	s.Add(10, 4)

	require.False(t, s.IsEmpty())
	require.Equal(t, 7.0, s.TotalCount())

	min, err := s.MinIndex()
	require.NoError(t, err)
	require.Equal(t, -3, min)

	max, err := s.MaxIndex()
	require.NoError(t, err)
	require.Equal(t, 10, max)
}

func TestDenseStoreMinMaxUndefinedWhenEmpty(t *testing.T) {
	s := store.NewDenseStore()
	_, err := s.MinIndex()
	require.ErrorIs(t, err, store.ErrUndefinedMinIndex)
	_, err = s.MaxIndex()
	require.ErrorIs(t, err, store.ErrUndefinedMaxIndex)
}

func TestDenseStoreKeyAtRank(t *testing.T) {
	s := store.NewDenseStore()
	// Three bins of weight 1 each at keys 0, 1, 2.
	s.Add(0, 1)
	s.Add(1, 1)
	s.Add(2, 1)

	require.Equal(t, 0, s.KeyAtRank(0, true))
	require.Equal(t, 1, s.KeyAtRank(1, true))
	require.Equal(t, 2, s.KeyAtRank(2, true))
}

func TestDenseStoreMergePreservesTotalCount(t *testing.T) {
	a := store.NewDenseStore()
	a.Add(0, 1)
	a.Add(5, 2)

	b := store.NewDenseStore()
	b.Add(-4, 3)
	b.Add(5, 1)

	a.MergeWith(b)
	require.Equal(t, 7.0, a.TotalCount())

	min, err := a.MinIndex()
	require.NoError(t, err)
	require.Equal(t, -4, min)
	max, err := a.MaxIndex()
	require.NoError(t, err)
	require.Equal(t, 5, max)
}

func TestDenseStoreCopyIsIndependent(t *testing.T) {
	a := store.NewDenseStore()
	a.Add(0, 1)

	cp := a.Copy()
	a.Add(1, 1)

	require.Equal(t, 1.0, cp.TotalCount())
	require.Equal(t, 2.0, a.TotalCount())
}

func TestDenseStoreForEachVisitsNonZeroBins(t *testing.T) {
	s := store.NewDenseStore()
	s.Add(0, 1)
	s.Add(3, 2)

	seen := map[int]float64{}
	s.ForEach(func(index int, count float64) bool {
		seen[index] = count
		return false
	})
	require.Equal(t, map[int]float64{0: 1, 3: 2}, seen)
}

func TestDenseStoreToProtoRoundtrip(t *testing.T) {
	a := store.NewDenseStore()
	a.Add(-2, 1)
	a.Add(0, 2)
	a.Add(3, 4)

	msg := a.ToProto()

	b := store.NewDenseStore()
	require.NoError(t, b.MergeWithProto(msg))
	require.Equal(t, a.TotalCount(), b.TotalCount())

	aMin, _ := a.MinIndex()
	bMin, _ := b.MinIndex()
	require.Equal(t, aMin, bMin)
}
