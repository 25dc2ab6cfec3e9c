package ddsketch

import (
	"github.com/pkg/errors"

	"github.com/relerror/ddsketch/mapping"
	"github.com/relerror/ddsketch/sketchpb"
	"github.com/relerror/ddsketch/store"
)

// ToProto renders s into its wire message form (spec.md §6).
func (s *Sketch) ToProto() *sketchpb.Sketch {
	return &sketchpb.Sketch{
		Mapping: &sketchpb.IndexMapping{
			Gamma:         s.mapping.Gamma(),
			IndexOffset:   s.mapping.IndexOffset(),
			Interpolation: s.mapping.Interpolation(),
		},
		PositiveValues: s.positive.ToProto(),
		NegativeValues: s.negative.ToProto(),
		ZeroCount:      s.zeroCount,
		Count:          s.count,
		Min:            s.min,
		Max:            s.max,
		Sum:            s.sum,
	}
}

// Marshal serializes s to the protobuf wire format.
func (s *Sketch) Marshal() []byte {
	return s.ToProto().Marshal()
}

// FromProto reconstructs a Sketch from its wire message form. The mapping
// variant is chosen from msg.Mapping.Interpolation; both stores are
// rebuilt as unbounded DenseStore and populated from the (sparse or dense)
// wire bins, per spec.md §4.4's from_wire contract.
func FromProto(msg *sketchpb.Sketch) (*Sketch, error) {
	if msg == nil || msg.Mapping == nil {
		return nil, errors.New("ddsketch: cannot decode a sketch with no mapping")
	}
	m, err := mapping.FromWire(msg.Mapping.Interpolation, msg.Mapping.Gamma, msg.Mapping.IndexOffset)
	if err != nil {
		return nil, errors.Wrap(err, "ddsketch: decoding mapping")
	}

	positive := store.NewDenseStore()
	if err := positive.MergeWithProto(msg.PositiveValues); err != nil {
		return nil, errors.Wrap(err, "ddsketch: decoding positive store")
	}
	negative := store.NewDenseStore()
	if err := negative.MergeWithProto(msg.NegativeValues); err != nil {
		return nil, errors.Wrap(err, "ddsketch: decoding negative store")
	}

	return &Sketch{
		mapping:   m,
		positive:  positive,
		negative:  negative,
		zeroCount: msg.ZeroCount,
		count:     msg.Count,
		min:       msg.Min,
		max:       msg.Max,
		sum:       msg.Sum,
	}, nil
}

// Unmarshal decodes a protobuf-wire-format message and reconstructs a
// Sketch from it.
func Unmarshal(data []byte) (*Sketch, error) {
	msg := &sketchpb.Sketch{}
	if err := msg.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "ddsketch: unmarshaling wire bytes")
	}
	return FromProto(msg)
}
