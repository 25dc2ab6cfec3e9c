package store

import "github.com/relerror/ddsketch/sketchpb"

// DenseStore is the unbounded dense store: it keeps every bin between the
// bin for minKey and the bin for maxKey, bounded only by available memory.
type DenseStore struct {
	core denseCore
}

// NewDenseStore returns an empty DenseStore with the default growth quantum.
func NewDenseStore() *DenseStore {
	return NewDenseStoreWithChunkSize(DefaultChunkSize)
}

// NewDenseStoreWithChunkSize returns an empty DenseStore that grows by
// chunkSize bins at a time.
func NewDenseStoreWithChunkSize(chunkSize int) *DenseStore {
	s := &DenseStore{}
	s.core = newDenseCore(s, chunkSize)
	return s
}

func (s *DenseStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	numChunks := ceilDiv(desired, s.core.chunkSize)
	return numChunks * s.core.chunkSize
}

func (s *DenseStore) getIndex(c *denseCore, key int) int {
	if key < c.minKey || key > c.maxKey {
		c.extendRange(key, key)
	}
	return key - c.offset
}

func (s *DenseStore) adjust(c *denseCore, newMinKey, newMaxKey int) {
	c.centerBins(newMinKey, newMaxKey)
	c.minKey = newMinKey
	c.maxKey = newMaxKey
}

func (s *DenseStore) Add(index int, count float64) { s.core.add(index, count) }

func (s *DenseStore) AddBin(b Bin) { s.core.add(b.Index, b.Count) }

func (s *DenseStore) IsEmpty() bool { return s.core.isEmpty() }

func (s *DenseStore) TotalCount() float64 { return s.core.totalCount() }

func (s *DenseStore) MinIndex() (int, error) { return s.core.minIndex() }

func (s *DenseStore) MaxIndex() (int, error) { return s.core.maxIndex() }

func (s *DenseStore) KeyAtRank(rank float64, lower bool) int {
	return s.core.keyAtRank(rank, lower)
}

func (s *DenseStore) ForEach(f func(index int, count float64) (stop bool)) { s.core.forEach(f) }

func (s *DenseStore) Clear() { s.core.clear() }

func (s *DenseStore) Copy() Store {
	cp := NewDenseStoreWithChunkSize(s.core.chunkSize)
	cp.core.copyFrom(&s.core)
	return cp
}

func (s *DenseStore) ToProto() *sketchpb.Store { return s.core.toProto() }

func (s *DenseStore) MergeWithProto(p *sketchpb.Store) error { return mergeWithProto(s, p) }

// MergeWith merges other into s, per the "base dense" merge algorithm of
// spec.md §4.3: range-extend, then pairwise-add overlapping bins.
func (s *DenseStore) MergeWith(other Store) {
	o, ok := other.(*DenseStore)
	if !ok {
		other.ForEach(func(index int, count float64) bool {
			s.Add(index, count)
			return false
		})
		return
	}
	if o.core.isEmpty() {
		return
	}
	if s.core.isEmpty() {
		s.core.copyFrom(&o.core)
		return
	}
	if o.core.minKey < s.core.minKey || o.core.maxKey > s.core.maxKey {
		s.core.extendRange(o.core.minKey, o.core.maxKey)
	}
	for key := o.core.minKey; key <= o.core.maxKey; key++ {
		s.core.bins.Add(key-s.core.offset, o.core.bins.Get(key-o.core.offset))
	}
	s.core.count += o.core.count
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
