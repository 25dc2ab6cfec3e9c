// Package sketchpb defines the wire schema the sketch is serialized to and
// implements it directly against the protobuf wire format, without a
// generated .pb.go: the schema is small and fixed, and the teacher's own
// vendored generated code (DataDog/sketches-go's ddsketch.proto_builder.go)
// shows this is exactly how a hand-maintained encoder for it looks.
package sketchpb

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrUnknownInterpolation is returned by decoders when a Sketch or
// IndexMapping message carries an interpolation discriminator this package
// does not recognize.
var ErrUnknownInterpolation = errors.New("sketchpb: unknown interpolation tag")

// IndexMapping_Interpolation mirrors the discriminator carried on the wire
// for which IndexMapping variant produced a Sketch's keys.
type IndexMapping_Interpolation int32

const (
	IndexMapping_NONE   IndexMapping_Interpolation = 0
	IndexMapping_LINEAR IndexMapping_Interpolation = 1
	IndexMapping_CUBIC  IndexMapping_Interpolation = 2
)

func (i IndexMapping_Interpolation) String() string {
	switch i {
	case IndexMapping_NONE:
		return "NONE"
	case IndexMapping_LINEAR:
		return "LINEAR"
	case IndexMapping_CUBIC:
		return "CUBIC"
	default:
		return fmt.Sprintf("IndexMapping_Interpolation(%d)", int32(i))
	}
}

// IndexMapping is the wire representation of a mapping: relative accuracy is
// not carried directly, gamma and indexOffset are (sufficient to reconstruct
// the mapping, and exact under merge equality checks).
type IndexMapping struct {
	Gamma         float64
	IndexOffset   float64
	Interpolation IndexMapping_Interpolation
}

const (
	fieldMappingGamma         = 1
	fieldMappingIndexOffset   = 2
	fieldMappingInterpolation = 3
)

// Marshal appends the wire encoding of m to b and returns the result.
func (m *IndexMapping) Marshal(b []byte) []byte {
	b = protowire.AppendTag(b, fieldMappingGamma, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Gamma))
	b = protowire.AppendTag(b, fieldMappingIndexOffset, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.IndexOffset))
	if m.Interpolation != IndexMapping_NONE {
		b = protowire.AppendTag(b, fieldMappingInterpolation, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Interpolation))
	}
	return b
}

// Unmarshal decodes b into m, overwriting its fields.
func (m *IndexMapping) Unmarshal(b []byte) error {
	*m = IndexMapping{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "sketchpb: IndexMapping tag")
		}
		b = b[n:]
		switch num {
		case fieldMappingGamma:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: IndexMapping.gamma")
			}
			m.Gamma = math.Float64frombits(v)
			b = b[n:]
		case fieldMappingIndexOffset:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: IndexMapping.indexOffset")
			}
			m.IndexOffset = math.Float64frombits(v)
			b = b[n:]
		case fieldMappingInterpolation:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: IndexMapping.interpolation")
			}
			m.Interpolation = IndexMapping_Interpolation(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: IndexMapping unknown field")
			}
			b = b[n:]
		}
	}
	switch m.Interpolation {
	case IndexMapping_NONE, IndexMapping_LINEAR, IndexMapping_CUBIC:
	default:
		return errors.Wrapf(ErrUnknownInterpolation, "tag %d", m.Interpolation)
	}
	return nil
}

// Store is the wire representation of a bin store. Sparse (BinCounts) and
// dense (ContiguousBinCounts + ContiguousBinIndexOffset) are both accepted on
// decode, and Marshal encodes whichever of them is set; the stores' ToProto
// fills only the dense form.
type Store struct {
	BinCounts                map[int32]float64
	ContiguousBinCounts      []float64
	ContiguousBinIndexOffset int32
}

const (
	fieldStoreBinCounts      = 1
	fieldStoreContiguous     = 2
	fieldStoreContiguousOff  = 3
	fieldBinCountsEntryKey   = 1
	fieldBinCountsEntryValue = 2
)

// Marshal appends the wire encoding of s to b and returns the result.
func (s *Store) Marshal(b []byte) []byte {
	for k, v := range s.BinCounts {
		entry := appendBinCountsEntry(nil, k, v)
		b = protowire.AppendTag(b, fieldStoreBinCounts, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	for _, v := range s.ContiguousBinCounts {
		b = protowire.AppendTag(b, fieldStoreContiguous, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	if s.ContiguousBinIndexOffset != 0 {
		b = protowire.AppendTag(b, fieldStoreContiguousOff, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(s.ContiguousBinIndexOffset)))
	}
	return b
}

func appendBinCountsEntry(b []byte, key int32, value float64) []byte {
	b = protowire.AppendTag(b, fieldBinCountsEntryKey, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(key)))
	b = protowire.AppendTag(b, fieldBinCountsEntryValue, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(value))
	return b
}

// Unmarshal decodes b into s, overwriting its fields.
func (s *Store) Unmarshal(b []byte) error {
	*s = Store{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "sketchpb: Store tag")
		}
		b = b[n:]
		switch num {
		case fieldStoreBinCounts:
			entry, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Store.binCounts")
			}
			b = b[n:]
			key, value, err := unmarshalBinCountsEntry(entry)
			if err != nil {
				return err
			}
			if s.BinCounts == nil {
				s.BinCounts = make(map[int32]float64)
			}
			s.BinCounts[key] = value
		case fieldStoreContiguous:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Store.contiguousBinCounts")
			}
			s.ContiguousBinCounts = append(s.ContiguousBinCounts, math.Float64frombits(v))
			b = b[n:]
		case fieldStoreContiguousOff:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Store.contiguousBinIndexOffset")
			}
			s.ContiguousBinIndexOffset = int32(protowire.DecodeZigZag(v))
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Store unknown field")
			}
			b = b[n:]
		}
	}
	return nil
}

func unmarshalBinCountsEntry(b []byte) (key int32, value float64, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, 0, errors.Wrap(protowire.ParseError(n), "sketchpb: BinCountsEntry tag")
		}
		b = b[n:]
		switch num {
		case fieldBinCountsEntryKey:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, 0, errors.Wrap(protowire.ParseError(n), "sketchpb: BinCountsEntry.key")
			}
			key = int32(protowire.DecodeZigZag(v))
			b = b[n:]
		case fieldBinCountsEntryValue:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, 0, errors.Wrap(protowire.ParseError(n), "sketchpb: BinCountsEntry.value")
			}
			value = math.Float64frombits(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, 0, errors.Wrap(protowire.ParseError(n), "sketchpb: BinCountsEntry unknown field")
			}
			b = b[n:]
		}
	}
	return key, value, nil
}

// Sketch is the top-level wire message described in spec.md §6.
type Sketch struct {
	Mapping        *IndexMapping
	PositiveValues *Store
	NegativeValues *Store
	ZeroCount      float64
	Count          float64
	Min            float64
	Max            float64
	Sum            float64
}

const (
	fieldSketchMapping        = 1
	fieldSketchPositiveValues = 2
	fieldSketchNegativeValues = 3
	fieldSketchZeroCount      = 4
	fieldSketchCount          = 5
	fieldSketchMin            = 6
	fieldSketchMax            = 7
	fieldSketchSum            = 8
)

// Marshal returns the wire encoding of s.
func (s *Sketch) Marshal() []byte {
	var b []byte
	if s.Mapping != nil {
		b = protowire.AppendTag(b, fieldSketchMapping, protowire.BytesType)
		b = protowire.AppendBytes(b, s.Mapping.Marshal(nil))
	}
	if s.PositiveValues != nil {
		b = protowire.AppendTag(b, fieldSketchPositiveValues, protowire.BytesType)
		b = protowire.AppendBytes(b, s.PositiveValues.Marshal(nil))
	}
	if s.NegativeValues != nil {
		b = protowire.AppendTag(b, fieldSketchNegativeValues, protowire.BytesType)
		b = protowire.AppendBytes(b, s.NegativeValues.Marshal(nil))
	}
	b = protowire.AppendTag(b, fieldSketchZeroCount, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.ZeroCount))
	b = protowire.AppendTag(b, fieldSketchCount, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.Count))
	b = protowire.AppendTag(b, fieldSketchMin, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.Min))
	b = protowire.AppendTag(b, fieldSketchMax, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.Max))
	b = protowire.AppendTag(b, fieldSketchSum, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(s.Sum))
	return b
}

// Unmarshal decodes b into s, overwriting its fields.
func (s *Sketch) Unmarshal(b []byte) error {
	*s = Sketch{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch tag")
		}
		b = b[n:]
		switch num {
		case fieldSketchMapping:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.mapping")
			}
			s.Mapping = &IndexMapping{}
			if err := s.Mapping.Unmarshal(raw); err != nil {
				return err
			}
			b = b[n:]
		case fieldSketchPositiveValues:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.positiveValues")
			}
			s.PositiveValues = &Store{}
			if err := s.PositiveValues.Unmarshal(raw); err != nil {
				return err
			}
			b = b[n:]
		case fieldSketchNegativeValues:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.negativeValues")
			}
			s.NegativeValues = &Store{}
			if err := s.NegativeValues.Unmarshal(raw); err != nil {
				return err
			}
			b = b[n:]
		case fieldSketchZeroCount:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.zeroCount")
			}
			s.ZeroCount = math.Float64frombits(v)
			b = b[n:]
		case fieldSketchCount:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.count")
			}
			s.Count = math.Float64frombits(v)
			b = b[n:]
		case fieldSketchMin:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.min")
			}
			s.Min = math.Float64frombits(v)
			b = b[n:]
		case fieldSketchMax:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.max")
			}
			s.Max = math.Float64frombits(v)
			b = b[n:]
		case fieldSketchSum:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch.sum")
			}
			s.Sum = math.Float64frombits(v)
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(protowire.ParseError(n), "sketchpb: Sketch unknown field")
			}
			b = b[n:]
		}
	}
	return nil
}
