package mapping

import (
	"math"

	"github.com/relerror/ddsketch/sketchpb"
)

// Cubic coefficients for the log2 approximation polynomial
// ((A*s + B)*s + C)*s, chosen (per the reference implementation) to
// minimize the worst-case error of the approximation over s in [0, 1).
const (
	cubicA = 6.0 / 35
	cubicB = -3.0 / 5
	cubicC = 10.0 / 7
)

// Cubic is a fast IndexMapping that approximates the memory-optimal
// Logarithmic mapping by cubically interpolating log2 in between the
// exponent boundaries extracted from a value's binary representation. It is
// slower than Linear but tighter, and faster than Logarithmic.
type Cubic struct {
	base
}

// NewCubic constructs a Cubic mapping for the given relative accuracy and
// index offset.
func NewCubic(relativeAccuracy float64, indexOffset float64) (*Cubic, error) {
	b, err := newBase(relativeAccuracy, indexOffset)
	if err != nil {
		return nil, err
	}
	b.multiplier /= cubicC
	return &Cubic{base: b}, nil
}

// NewCubicWithGamma constructs a Cubic mapping directly from gamma.
func NewCubicWithGamma(gamma, indexOffset float64) (*Cubic, error) {
	b, err := newBaseFromGamma(gamma, indexOffset)
	if err != nil {
		return nil, err
	}
	b.multiplier /= cubicC
	return &Cubic{base: b}, nil
}

func cubicLog2Approx(value float64) float64 {
	mantissa, exponent := math.Frexp(value)
	s := 2*mantissa - 1
	return ((cubicA*s+cubicB)*s+cubicC)*s + float64(exponent-1)
}

// cubicExp2Approx is the inverse of cubicLog2Approx, solving
// A*s^3 + B*s^2 + C*s - y = 0 for s via Cardano's formula, where y is the
// fractional part of value.
func cubicExp2Approx(value float64) float64 {
	floorValue := math.Floor(value)
	exponent := int(floorValue)
	y := value - floorValue

	delta0 := cubicB*cubicB - 3*cubicA*cubicC
	delta1 := 2*cubicB*cubicB*cubicB - 9*cubicA*cubicB*cubicC - 27*cubicA*cubicA*y
	cardano := math.Cbrt((delta1 - math.Sqrt(delta1*delta1-4*delta0*delta0*delta0)) / 2)
	significandPlusOne := -(cubicB+cardano+delta0/cardano)/(3*cubicA) + 1
	mantissa := significandPlusOne / 2

	return math.Ldexp(mantissa, exponent+1)
}

func (m *Cubic) logGamma(value float64) float64 {
	return cubicLog2Approx(value) * m.multiplier
}

func (m *Cubic) powGamma(value float64) float64 {
	return cubicExp2Approx(value / m.multiplier)
}

func (m *Cubic) Index(value float64) int {
	return int(math.Ceil(m.logGamma(value)) + m.indexOffset)
}

func (m *Cubic) Value(index int) float64 {
	return m.valueFromPowGamma(m.powGamma(float64(index) - m.indexOffset))
}

func (m *Cubic) Interpolation() sketchpb.IndexMapping_Interpolation {
	return sketchpb.IndexMapping_CUBIC
}

func (m *Cubic) Equals(other IndexMapping) bool {
	_, ok := other.(*Cubic)
	return ok && equalMappings(m, other)
}
