// Package store implements the bin store layer: a dense, dynamically
// growing/shrinking array of weighted counts keyed by signed integer, plus
// two bounded variants that collapse extreme keys when a bin budget is
// exceeded.
package store

import (
	"math"

	"github.com/pkg/errors"

	"github.com/relerror/ddsketch/sketchpb"
)

// DefaultChunkSize is the growth quantum used when a Store is constructed
// without an explicit one.
const DefaultChunkSize = 128

// DefaultBinLimit is the bin budget collapsing stores use when constructed
// with a non-positive limit.
const DefaultBinLimit = 2048

var (
	// ErrUndefinedMinIndex is returned by MinIndex on an empty store.
	ErrUndefinedMinIndex = errors.New("store: min index is undefined for an empty store")
	// ErrUndefinedMaxIndex is returned by MaxIndex on an empty store.
	ErrUndefinedMaxIndex = errors.New("store: max index is undefined for an empty store")
)

// Bin is a single (key, count) pair, the sparse unit of iteration and of
// the sparse wire encoding.
type Bin struct {
	Index int
	Count float64
}

// Store is the capability set spec.md §9 calls for: any bin geometry that
// supports these operations can back a Sketch's positive or negative side.
type Store interface {
	// Add grows the range if needed to include index, then adds count to
	// its bin.
	Add(index int, count float64)
	AddBin(b Bin)
	IsEmpty() bool
	TotalCount() float64
	MinIndex() (int, error)
	MaxIndex() (int, error)
	// KeyAtRank scans bins in increasing key order and returns the first
	// key whose running count satisfies the lower/upper rank contract of
	// spec.md §4.3.
	KeyAtRank(rank float64, lower bool) int
	MergeWith(other Store)
	Copy() Store
	Clear()
	ForEach(f func(index int, count float64) (stop bool))
	ToProto() *sketchpb.Store
	// MergeWithProto absorbs bins from a wire message, whether carried in
	// sparse or dense form, by calling Add for each (key, count) pair.
	MergeWithProto(p *sketchpb.Store) error
}

// mergeWithProto is shared by all three Store implementations: it is the
// transparent sparse-or-dense decode path spec.md §6 describes.
func mergeWithProto(s Store, p *sketchpb.Store) error {
	if p == nil {
		return nil
	}
	for key, count := range p.BinCounts {
		s.AddBin(Bin{Index: int(key), Count: count})
	}
	offset := int(p.ContiguousBinIndexOffset)
	for i, count := range p.ContiguousBinCounts {
		s.AddBin(Bin{Index: offset + i, Count: count})
	}
	return nil
}

func clampChunkSize(chunkSize int) int {
	if chunkSize <= 0 {
		return DefaultChunkSize
	}
	return chunkSize
}

func clampBinLimit(binLimit int) int {
	if binLimit <= 0 {
		return DefaultBinLimit
	}
	return binLimit
}

const (
	sentinelMinKey = math.MaxInt
	sentinelMaxKey = math.MinInt
)
