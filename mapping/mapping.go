// Package mapping implements the index mapping layer: a bijection-like
// correspondence between positive real values and signed integer bin keys
// that realizes a bounded relative-error guarantee.
//
// Three variants trade compute cost for memory optimality: Logarithmic is
// memory-optimal and the most expensive to evaluate; Linear is the fastest
// approximation; Cubic sits in between. All three share the same
// construction math, differing only in how they approximate log2 and its
// inverse.
package mapping

import (
	"math"

	"github.com/pkg/errors"

	"github.com/relerror/ddsketch/sketchpb"
)

// ErrInvalidRelativeAccuracy is returned when a mapping is constructed with
// alpha outside (0, 1).
var ErrInvalidRelativeAccuracy = errors.New("mapping: relative accuracy must be between 0 and 1")

// IndexMapping maps positive real values to integer bin keys and back with a
// bounded relative error. Implementations are immutable once constructed.
type IndexMapping interface {
	// Index returns ceil(log_gamma(value)) + offset. Precondition: value > MinIndexableValue().
	Index(value float64) int
	// Value returns the midpoint of the bin identified by index, the
	// error-minimizing representative for any value that mapped to it.
	Value(index int) float64
	Gamma() float64
	// IndexOffset returns the offset applied to Index/Value, i.e. the same
	// value ToProto/FromWire round-trip through sketchpb.IndexMapping.
	IndexOffset() float64
	MinIndexableValue() float64
	MaxIndexableValue() float64
	RelativeAccuracy() float64
	Interpolation() sketchpb.IndexMapping_Interpolation
	// Equals reports whether other is the same variant with the same gamma
	// (within a small relative tolerance). Sketch.Merge does not call it: it
	// compares gamma exactly and ignores the variant.
	Equals(other IndexMapping) bool
}

// base holds the state and math shared by all three variants. Every
// concrete mapping embeds it but re-implements Index/Value itself, since Go
// has no virtual dispatch back from an embedded type into the embedder's
// logGamma/powGamma.
type base struct {
	gamma       float64
	indexOffset float64
	multiplier  float64
	minIndexable float64
	maxIndexable float64
}

// smallestNormalFloat64 is the smallest positive *normal* float64, i.e.
// math.SmallestNonzeroFloat64 shifted up out of the subnormal range. Using
// it (rather than the true smallest representable magnitude) for
// min_indexable is intentional: it keeps mapped values out of the subnormal
// range where relative-error bookkeeping degrades.
const smallestNormalFloat64 = 0x1p-1022

func newBase(relativeAccuracy, offset float64) (base, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return base{}, errors.Wrapf(ErrInvalidRelativeAccuracy, "got %v", relativeAccuracy)
	}
	gamma := (1 + relativeAccuracy) / (1 - relativeAccuracy)
	return newBaseFromGamma(gamma, offset)
}

// newBaseFromGamma builds the shared state directly from gamma, the form a
// mapping is carried in on the wire (see sketchpb.IndexMapping), avoiding a
// lossy relative-accuracy round trip on decode.
func newBaseFromGamma(gamma, offset float64) (base, error) {
	if gamma <= 1 {
		return base{}, errors.Wrapf(ErrInvalidRelativeAccuracy, "gamma must be greater than 1, got %v", gamma)
	}
	return base{
		gamma:        gamma,
		indexOffset:  offset,
		multiplier:   1 / math.Log(gamma),
		minIndexable: smallestNormalFloat64 * gamma,
		maxIndexable: math.MaxFloat64 / gamma,
	}, nil
}

func (b base) Gamma() float64             { return b.gamma }
func (b base) IndexOffset() float64       { return b.indexOffset }
func (b base) MinIndexableValue() float64 { return b.minIndexable }
func (b base) MaxIndexableValue() float64 { return b.maxIndexable }

// RelativeAccuracy inverts newBase's gamma construction; it is Gamma's
// natural complement for callers that configured a sketch by accuracy
// and want it back rather than re-deriving it from gamma themselves.
func (b base) RelativeAccuracy() float64 { return (b.gamma - 1) / (b.gamma + 1) }

// valueFromPowGamma converts a bin key back to the bin's midpoint value,
// given pow_gamma(key - offset).
func (b base) valueFromPowGamma(powGammaOfKey float64) float64 {
	return powGammaOfKey * (2.0 / (1 + b.gamma))
}

func equalMappings(a, b IndexMapping) bool {
	const tol = 1e-9
	return a.Interpolation() == b.Interpolation() && withinTolerance(a.Gamma(), b.Gamma(), tol)
}

func withinTolerance(x, y, tol float64) bool {
	if x == 0 || y == 0 {
		return math.Abs(x) <= tol && math.Abs(y) <= tol
	}
	return math.Abs(x-y) <= tol*math.Max(math.Abs(x), math.Abs(y))
}

// FromWire reconstructs the mapping variant named by the wire discriminator
// directly from its wire form (gamma, indexOffset). It is the dispatch on the
// interpolation tag that ddsketch.FromProto relies on, and
// fails per spec.md §6/§7 on any other value.
func FromWire(interpolation sketchpb.IndexMapping_Interpolation, gamma, indexOffset float64) (IndexMapping, error) {
	switch interpolation {
	case sketchpb.IndexMapping_NONE:
		return NewLogarithmicWithGamma(gamma, indexOffset)
	case sketchpb.IndexMapping_LINEAR:
		return NewLinearWithGamma(gamma, indexOffset)
	case sketchpb.IndexMapping_CUBIC:
		return NewCubicWithGamma(gamma, indexOffset)
	default:
		return nil, errors.Wrapf(sketchpb.ErrUnknownInterpolation, "tag %v", interpolation)
	}
}
