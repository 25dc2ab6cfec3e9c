// Package ddsketch implements the sketch aggregator: a mapping plus two
// bin stores (positive, negative), a zero-count and summary statistics,
// composed into a mergeable, serializable relative-error quantile sketch.
package ddsketch

import (
	"math"

	"github.com/pkg/errors"

	"github.com/relerror/ddsketch/mapping"
	"github.com/relerror/ddsketch/store"
)

var (
	// ErrInvalidWeight is returned by Add when w <= 0.
	ErrInvalidWeight = errors.New("ddsketch: weight must be > 0")
	// ErrUnequalGamma is returned by Merge when the two sketches were
	// built with different relative-accuracy parameters.
	ErrUnequalGamma = errors.New("ddsketch: cannot merge sketches with different gamma")
)

// Sketch composes an index mapping with a positive and a negative bin
// store, per spec.md §4.4. The zero value is not usable; construct with
// one of the New* functions.
type Sketch struct {
	mapping   mapping.IndexMapping
	positive  store.Store
	negative  store.Store
	zeroCount float64
	count     float64
	min       float64
	max       float64
	sum       float64
}

// newSketch wires an already-constructed mapping and pair of stores into a
// fresh, empty Sketch. min/max start at +Inf/-Inf so the first Add always
// replaces them, matching spec.md §4.5's sentinel contract.
func newSketch(m mapping.IndexMapping, positive, negative store.Store) *Sketch {
	return &Sketch{
		mapping:  m,
		positive: positive,
		negative: negative,
		min:      math.Inf(1),
		max:      math.Inf(-1),
	}
}

// NewDefault returns an unbounded sketch: a Logarithmic mapping over both
// an unbounded positive and negative DenseStore.
func NewDefault(relativeAccuracy float64) (*Sketch, error) {
	m, err := mapping.NewLogarithmic(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return newSketch(m, store.NewDenseStore(), store.NewDenseStore()), nil
}

// NewCollapsingLowest returns a sketch bounded to binLimit bins per side by
// collapsing the smallest-magnitude bins once that budget is exceeded,
// mirroring original_source's LogCollapsingLowestDenseDDSketch.
func NewCollapsingLowest(relativeAccuracy float64, binLimit int) (*Sketch, error) {
	m, err := mapping.NewLogarithmic(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return newSketch(m, store.NewCollapsingLowestStore(binLimit), store.NewCollapsingLowestStore(binLimit)), nil
}

// NewCollapsingHighest returns a sketch bounded to binLimit bins per side by
// collapsing the largest-magnitude bins once that budget is exceeded,
// mirroring original_source's LogCollapsingHighestDenseDDSketch.
func NewCollapsingHighest(relativeAccuracy float64, binLimit int) (*Sketch, error) {
	m, err := mapping.NewLogarithmic(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return newSketch(m, store.NewCollapsingHighestStore(binLimit), store.NewCollapsingHighestStore(binLimit)), nil
}

// Add ingests v with weight w. w must be > 0.
func (s *Sketch) Add(v, w float64) error {
	if w <= 0 {
		return ErrInvalidWeight
	}
	switch {
	case v > s.mapping.MinIndexableValue():
		s.positive.Add(s.mapping.Index(v), w)
	case v < -s.mapping.MinIndexableValue():
		s.negative.Add(s.mapping.Index(-v), w)
	default:
		s.zeroCount += w
	}
	s.count += w
	s.sum += v * w
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
	return nil
}

// NumValues returns the total weight ingested.
func (s *Sketch) NumValues() float64 { return s.count }

// Sum returns the weighted sum of all ingested values.
func (s *Sketch) Sum() float64 { return s.sum }

// Min returns the smallest ingested value, or +Inf if the sketch is empty.
func (s *Sketch) Min() float64 { return s.min }

// Max returns the largest ingested value, or -Inf if the sketch is empty.
func (s *Sketch) Max() float64 { return s.max }

// Avg returns Sum()/NumValues(). It is undefined (NaN) on an empty sketch;
// per spec.md §4.5 the caller must check NumValues() first.
func (s *Sketch) Avg() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.sum / s.count
}

// GetQuantileValue returns an approximation of the q-quantile of the
// ingested stream, accurate to within the sketch's relative accuracy
// except where collapse has occurred. Returns NaN if q is outside [0, 1]
// or the sketch is empty, per spec.md §4.4.
func (s *Sketch) GetQuantileValue(q float64) float64 {
	if q < 0 || q > 1 || s.count == 0 {
		return math.NaN()
	}
	rank := q * (s.count - 1)

	negativeCount := s.negative.TotalCount()
	if rank < negativeCount {
		reversedRank := negativeCount - rank - 1
		return -s.mapping.Value(s.negative.KeyAtRank(reversedRank, false))
	}
	if rank < negativeCount+s.zeroCount {
		return 0
	}
	return s.mapping.Value(s.positive.KeyAtRank(rank-negativeCount-s.zeroCount, true))
}

// Merge absorbs other into s. Fails with ErrUnequalGamma if the two
// sketches were built with different gamma. A merge with an empty other is
// a no-op; merging into an empty s deep-copies other.
func (s *Sketch) Merge(other *Sketch) error {
	if s.mapping.Gamma() != other.mapping.Gamma() {
		return ErrUnequalGamma
	}
	if other.count == 0 {
		return nil
	}
	if s.count == 0 {
		s.positive = other.positive.Copy()
		s.negative = other.negative.Copy()
		s.zeroCount = other.zeroCount
		s.count = other.count
		s.sum = other.sum
		s.min = other.min
		s.max = other.max
		return nil
	}

	s.positive.MergeWith(other.positive)
	s.negative.MergeWith(other.negative)
	s.zeroCount += other.zeroCount
	s.count += other.count
	s.sum += other.sum
	if other.min < s.min {
		s.min = other.min
	}
	if other.max > s.max {
		s.max = other.max
	}
	return nil
}

// collapsible is satisfied by store.CollapsingLowestStore and
// store.CollapsingHighestStore; store.Store itself carries no such method
// since DenseStore never collapses.
type collapsible interface {
	IsCollapsed() bool
}

// IsCollapsed reports whether either side's store has folded tail mass
// into a boundary bin, losing the relative-error guarantee there.
func (s *Sketch) IsCollapsed() bool {
	p, ok := s.positive.(collapsible)
	if ok && p.IsCollapsed() {
		return true
	}
	n, ok := s.negative.(collapsible)
	return ok && n.IsCollapsed()
}
