package mapping

import (
	"math"

	"github.com/relerror/ddsketch/sketchpb"
)

// Linear is a fast IndexMapping that approximates the memory-optimal
// Logarithmic mapping by extracting the floor of log2 from a value's binary
// representation (via math.Frexp) and linearly interpolating in between.
type Linear struct {
	base
}

// NewLinear constructs a Linear mapping for the given relative accuracy and
// index offset.
func NewLinear(relativeAccuracy float64, indexOffset float64) (*Linear, error) {
	b, err := newBase(relativeAccuracy, indexOffset)
	if err != nil {
		return nil, err
	}
	return &Linear{base: b}, nil
}

// NewLinearWithGamma constructs a Linear mapping directly from gamma.
func NewLinearWithGamma(gamma, indexOffset float64) (*Linear, error) {
	b, err := newBaseFromGamma(gamma, indexOffset)
	if err != nil {
		return nil, err
	}
	return &Linear{base: b}, nil
}

// log2Approx approximates log2(value) as s + (e-1) where value = m*2^e,
// m in [0.5, 1) and s = 2m-1, i.e. s is the deviation of the mantissa from
// its lower bound scaled to [0, 1).
func log2Approx(value float64) float64 {
	mantissa, exponent := math.Frexp(value)
	significand := 2*mantissa - 1
	return significand + float64(exponent-1)
}

// exp2Approx is the exact inverse of log2Approx.
func exp2Approx(value float64) float64 {
	exponent := math.Floor(value) + 1
	mantissa := (value - exponent + 2) / 2
	return math.Ldexp(mantissa, int(exponent))
}

func (m *Linear) logGamma(value float64) float64 {
	return log2Approx(value) * m.multiplier
}

func (m *Linear) powGamma(value float64) float64 {
	return exp2Approx(value / m.multiplier)
}

func (m *Linear) Index(value float64) int {
	return int(math.Ceil(m.logGamma(value)) + m.indexOffset)
}

func (m *Linear) Value(index int) float64 {
	return m.valueFromPowGamma(m.powGamma(float64(index) - m.indexOffset))
}

func (m *Linear) Interpolation() sketchpb.IndexMapping_Interpolation {
	return sketchpb.IndexMapping_LINEAR
}

func (m *Linear) Equals(other IndexMapping) bool {
	_, ok := other.(*Linear)
	return ok && equalMappings(m, other)
}
