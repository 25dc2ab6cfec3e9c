package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relerror/ddsketch/store"
)

func TestCollapsingLowestRespectsBinLimit(t *testing.T) {
	s := store.NewCollapsingLowestStoreWithChunkSize(4, 4)
	for k := 0; k < 100; k++ {
		s.Add(k, 1)
	}
	require.Equal(t, 100.0, s.TotalCount())
	require.True(t, s.IsCollapsed())

	max, err := s.MaxIndex()
	require.NoError(t, err)
	require.Equal(t, 99, max)

	min, err := s.MinIndex()
	require.NoError(t, err)
	require.LessOrEqual(t, max-min+1, s.BinLimit())
}

func TestCollapsingLowestFoldsLowTailIntoBoundaryBin(t *testing.T) {
	s := store.NewCollapsingLowestStoreWithChunkSize(2, 2)
	s.Add(10, 1)
	s.Add(11, 1)
	s.Add(0, 1) // falls below the window; should collapse into the boundary bin.

	require.True(t, s.IsCollapsed())
	require.Equal(t, 3.0, s.TotalCount())
}

func TestCollapsingLowestMergePreservesCount(t *testing.T) {
	a := store.NewCollapsingLowestStoreWithChunkSize(4, 4)
	a.Add(10, 1)
	a.Add(11, 1)

	b := store.NewCollapsingLowestStoreWithChunkSize(4, 4)
	b.Add(0, 1)
	b.Add(1, 1)
	b.Add(20, 1)

	a.MergeWith(b)
	require.Equal(t, 5.0, a.TotalCount())
}

func TestCollapsingHighestRespectsBinLimit(t *testing.T) {
	s := store.NewCollapsingHighestStoreWithChunkSize(4, 4)
	for k := 0; k < 100; k++ {
		s.Add(k, 1)
	}
	require.Equal(t, 100.0, s.TotalCount())
	require.True(t, s.IsCollapsed())

	min, err := s.MinIndex()
	require.NoError(t, err)
	require.Equal(t, 0, min)
}

func TestCollapsingHighestFoldsHighTailIntoBoundaryBin(t *testing.T) {
	s := store.NewCollapsingHighestStoreWithChunkSize(2, 2)
	s.Add(0, 1)
	s.Add(1, 1)
	s.Add(50, 1) // exceeds the window; should collapse into the boundary bin.

	require.True(t, s.IsCollapsed())
	require.Equal(t, 3.0, s.TotalCount())
}

func TestCollapsingHighestMergePreservesCount(t *testing.T) {
	a := store.NewCollapsingHighestStoreWithChunkSize(4, 4)
	a.Add(0, 1)
	a.Add(1, 1)

	b := store.NewCollapsingHighestStoreWithChunkSize(4, 4)
	b.Add(10, 1)
	b.Add(11, 1)
	b.Add(-5, 1)

	a.MergeWith(b)
	require.Equal(t, 5.0, a.TotalCount())
}
