package store

import "github.com/relerror/ddsketch/sketchpb"

// CollapsingLowestStore is a dense store capped at binLimit bins: once the
// key range would need more, the lowest-indexed bins are folded into bin 0.
// Collapse is sticky (IsCollapsed stays set until Clear) and preserves total count
// but loses the location of the collapsed mass, per spec.md §4.3.
type CollapsingLowestStore struct {
	core        denseCore
	binLimit    int
	isCollapsed bool
}

// NewCollapsingLowestStore returns an empty store capped at binLimit bins
// (DefaultBinLimit if binLimit <= 0).
func NewCollapsingLowestStore(binLimit int) *CollapsingLowestStore {
	return NewCollapsingLowestStoreWithChunkSize(binLimit, DefaultChunkSize)
}

// NewCollapsingLowestStoreWithChunkSize is NewCollapsingLowestStore with an
// explicit growth quantum.
func NewCollapsingLowestStoreWithChunkSize(binLimit, chunkSize int) *CollapsingLowestStore {
	s := &CollapsingLowestStore{binLimit: clampBinLimit(binLimit)}
	s.core = newDenseCore(s, chunkSize)
	return s
}

// BinLimit returns the configured bin budget.
func (s *CollapsingLowestStore) BinLimit() int { return s.binLimit }

// IsCollapsed reports whether any mass has been folded into the boundary
// bin yet.
func (s *CollapsingLowestStore) IsCollapsed() bool { return s.isCollapsed }

func (s *CollapsingLowestStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	numChunks := ceilDiv(desired, s.core.chunkSize)
	length := numChunks * s.core.chunkSize
	if length > s.binLimit {
		return s.binLimit
	}
	return length
}

func (s *CollapsingLowestStore) getIndex(c *denseCore, key int) int {
	if key < c.minKey {
		if s.isCollapsed {
			return 0
		}
		c.extendRange(key, key)
		if s.isCollapsed {
			return 0
		}
	} else if key > c.maxKey {
		c.extendRange(key, key)
	}
	return key - c.offset
}

// adjust re-centers the buffer when it still fits the requested range, or
// collapses the lowest bins into bin 0 when it does not, per spec.md §4.3.
func (s *CollapsingLowestStore) adjust(c *denseCore, newMinKey, newMaxKey int) {
	if newMaxKey-newMinKey+1 > c.length() {
		newMinKey = newMaxKey - c.length() + 1

		if newMinKey >= c.maxKey {
			// Everything collapses into the first bin.
			c.offset = newMinKey
			c.minKey = newMinKey
			c.bins = NewBinList(c.length())
			c.bins.Set(0, c.count)
		} else {
			// The low end needs folding exactly when the clamped newMinKey
			// cuts off bins the buffer currently holds below it.
			if newMinKey > c.minKey {
				collapseStart := c.minKey - c.offset
				collapseEnd := newMinKey - c.offset
				collapsed, _ := c.bins.SumRange(collapseStart, collapseEnd)
				c.bins.ReplaceWithZeros(collapseStart, collapseEnd, newMinKey-c.minKey)
				c.bins.Add(collapseEnd, collapsed)
			}
			c.minKey = newMinKey
			c.shiftBins(c.offset - newMinKey)
		}

		c.maxKey = newMaxKey
		s.isCollapsed = true
	} else {
		c.centerBins(newMinKey, newMaxKey)
		c.minKey = newMinKey
		c.maxKey = newMaxKey
	}
}

func (s *CollapsingLowestStore) Add(index int, count float64) { s.core.add(index, count) }

func (s *CollapsingLowestStore) AddBin(b Bin) { s.core.add(b.Index, b.Count) }

func (s *CollapsingLowestStore) IsEmpty() bool { return s.core.isEmpty() }

func (s *CollapsingLowestStore) TotalCount() float64 { return s.core.totalCount() }

func (s *CollapsingLowestStore) MinIndex() (int, error) { return s.core.minIndex() }

func (s *CollapsingLowestStore) MaxIndex() (int, error) { return s.core.maxIndex() }

func (s *CollapsingLowestStore) KeyAtRank(rank float64, lower bool) int {
	return s.core.keyAtRank(rank, lower)
}

func (s *CollapsingLowestStore) ForEach(f func(index int, count float64) (stop bool)) {
	s.core.forEach(f)
}

func (s *CollapsingLowestStore) Clear() {
	s.core.clear()
	s.isCollapsed = false
}

func (s *CollapsingLowestStore) Copy() Store {
	cp := NewCollapsingLowestStoreWithChunkSize(s.binLimit, s.core.chunkSize)
	cp.core.copyFrom(&s.core)
	cp.isCollapsed = s.isCollapsed
	return cp
}

func (s *CollapsingLowestStore) ToProto() *sketchpb.Store { return s.core.toProto() }

func (s *CollapsingLowestStore) MergeWithProto(p *sketchpb.Store) error { return mergeWithProto(s, p) }

// MergeWith merges other into s. If other's keys extend below s's (possibly
// newly collapsed) minimum, that low tail is summed from other's own buffer
// and folded into s's boundary bin before the remaining bins are
// pairwise-added, per spec.md §4.3's collapsing-lowest merge.
func (s *CollapsingLowestStore) MergeWith(other Store) {
	o, ok := other.(*CollapsingLowestStore)
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
		s.isCollapsed = o.isCollapsed
		return
	}
	if o.core.minKey < s.core.minKey || o.core.maxKey > s.core.maxKey {
		s.core.extendRange(o.core.minKey, o.core.maxKey)
	}

	collapseStartIdx := o.core.minKey - o.core.offset
	collapseEndIdx := min(s.core.minKey, o.core.maxKey+1) - o.core.offset
	if collapseEndIdx > collapseStartIdx {
		collapsed, _ := o.core.bins.SumRange(collapseStartIdx, collapseEndIdx)
		s.core.bins.Add(0, collapsed)
	} else {
		collapseEndIdx = collapseStartIdx
	}

	for key := collapseEndIdx + o.core.offset; key <= o.core.maxKey; key++ {
		s.core.bins.Add(key-s.core.offset, o.core.bins.Get(key-o.core.offset))
	}
	s.core.count += o.core.count
}
