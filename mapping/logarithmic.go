package mapping

import (
	"math"

	"github.com/relerror/ddsketch/sketchpb"
)

// Logarithmic is the memory-optimal IndexMapping: given a target relative
// accuracy it requires the fewest keys to cover a value range, at the cost
// of an exact log2 evaluation per Index/Value call.
type Logarithmic struct {
	base
}

// NewLogarithmic constructs a Logarithmic mapping for the given relative
// accuracy and index offset (usually 0).
func NewLogarithmic(relativeAccuracy float64, indexOffset float64) (*Logarithmic, error) {
	b, err := newBase(relativeAccuracy, indexOffset)
	if err != nil {
		return nil, err
	}
	b.multiplier *= math.Ln2
	return &Logarithmic{base: b}, nil
}

// NewLogarithmicWithGamma constructs a Logarithmic mapping directly from
// gamma, as used when reconstructing a mapping from its wire form.
func NewLogarithmicWithGamma(gamma, indexOffset float64) (*Logarithmic, error) {
	b, err := newBaseFromGamma(gamma, indexOffset)
	if err != nil {
		return nil, err
	}
	b.multiplier *= math.Ln2
	return &Logarithmic{base: b}, nil
}

func (m *Logarithmic) logGamma(value float64) float64 {
	return math.Log2(value) * m.multiplier
}

func (m *Logarithmic) powGamma(value float64) float64 {
	return math.Exp2(value / m.multiplier)
}

func (m *Logarithmic) Index(value float64) int {
	return int(math.Ceil(m.logGamma(value)) + m.indexOffset)
}

func (m *Logarithmic) Value(index int) float64 {
	return m.valueFromPowGamma(m.powGamma(float64(index) - m.indexOffset))
}

func (m *Logarithmic) Interpolation() sketchpb.IndexMapping_Interpolation {
	return sketchpb.IndexMapping_NONE
}

func (m *Logarithmic) Equals(other IndexMapping) bool {
	_, ok := other.(*Logarithmic)
	return ok && equalMappings(m, other)
}
