package sketchpb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relerror/ddsketch/sketchpb"
)

func TestIndexMappingRoundtrip(t *testing.T) {
	m := &sketchpb.IndexMapping{Gamma: 1.02, IndexOffset: 1.5, Interpolation: sketchpb.IndexMapping_CUBIC}
	data := m.Marshal(nil)

	got := &sketchpb.IndexMapping{}
	require.NoError(t, got.Unmarshal(data))
	require.Equal(t, m, got)
}

func TestIndexMappingUnmarshalRejectsUnknownInterpolation(t *testing.T) {
	m := &sketchpb.IndexMapping{Gamma: 1.02, Interpolation: 99}
	data := m.Marshal(nil)

	got := &sketchpb.IndexMapping{}
	err := got.Unmarshal(data)
	require.ErrorIs(t, err, sketchpb.ErrUnknownInterpolation)
}

func TestStoreRoundtripDense(t *testing.T) {
	s := &sketchpb.Store{
		ContiguousBinCounts:      []float64{1, 2, 3},
		ContiguousBinIndexOffset: -5,
	}
	data := s.Marshal(nil)

	got := &sketchpb.Store{}
	require.NoError(t, got.Unmarshal(data))
	require.Equal(t, s, got)
}

func TestStoreRoundtripSparse(t *testing.T) {
	s := &sketchpb.Store{
		BinCounts: map[int32]float64{-3: 1, 0: 2, 10: 4},
	}
	data := s.Marshal(nil)

	got := &sketchpb.Store{}
	require.NoError(t, got.Unmarshal(data))
	require.Equal(t, s.BinCounts, got.BinCounts)
}

func TestSketchRoundtrip(t *testing.T) {
	s := &sketchpb.Sketch{
		Mapping: &sketchpb.IndexMapping{Gamma: 1.01, Interpolation: sketchpb.IndexMapping_NONE},
		PositiveValues: &sketchpb.Store{
			ContiguousBinCounts:      []float64{1, 1, 2},
			ContiguousBinIndexOffset: 3,
		},
		NegativeValues: &sketchpb.Store{},
		ZeroCount:      1,
		Count:          5,
		Min:            -1,
		Max:            10,
		Sum:            20,
	}
	data := s.Marshal()

	got := &sketchpb.Sketch{}
	require.NoError(t, got.Unmarshal(data))
	require.Equal(t, s.Count, got.Count)
	require.Equal(t, s.Mapping.Gamma, got.Mapping.Gamma)
	require.Equal(t, s.PositiveValues.ContiguousBinCounts, got.PositiveValues.ContiguousBinCounts)
}
