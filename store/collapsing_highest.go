package store

import "github.com/relerror/ddsketch/sketchpb"

// CollapsingHighestStore is a dense store capped at binLimit bins: once the
// key range would need more, the highest-indexed bins are folded into the
// last bin. Collapse is sticky and preserves total count but loses the
// location of the collapsed mass, per spec.md §4.3.
type CollapsingHighestStore struct {
	core        denseCore
	binLimit    int
	isCollapsed bool
}

// NewCollapsingHighestStore returns an empty store capped at binLimit bins
// (DefaultBinLimit if binLimit <= 0).
func NewCollapsingHighestStore(binLimit int) *CollapsingHighestStore {
	return NewCollapsingHighestStoreWithChunkSize(binLimit, DefaultChunkSize)
}

// NewCollapsingHighestStoreWithChunkSize is NewCollapsingHighestStore with an
// explicit growth quantum.
func NewCollapsingHighestStoreWithChunkSize(binLimit, chunkSize int) *CollapsingHighestStore {
	s := &CollapsingHighestStore{binLimit: clampBinLimit(binLimit)}
	s.core = newDenseCore(s, chunkSize)
	return s
}

// BinLimit returns the configured bin budget.
func (s *CollapsingHighestStore) BinLimit() int { return s.binLimit }

// IsCollapsed reports whether any mass has been folded into the boundary
// bin yet.
func (s *CollapsingHighestStore) IsCollapsed() bool { return s.isCollapsed }

func (s *CollapsingHighestStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	numChunks := ceilDiv(desired, s.core.chunkSize)
	length := numChunks * s.core.chunkSize
	if length > s.binLimit {
		return s.binLimit
	}
	return length
}

func (s *CollapsingHighestStore) getIndex(c *denseCore, key int) int {
	if key > c.maxKey {
		if s.isCollapsed {
			return c.length() - 1
		}
		c.extendRange(key, key)
		if s.isCollapsed {
			return c.length() - 1
		}
	} else if key < c.minKey {
		c.extendRange(key, key)
	}
	return key - c.offset
}

// adjust re-centers the buffer when it still fits the requested range, or
// collapses the highest bins into the last bin when it does not, the
// mirror image of CollapsingLowestStore.adjust, per spec.md §4.3.
func (s *CollapsingHighestStore) adjust(c *denseCore, newMinKey, newMaxKey int) {
	if newMaxKey-newMinKey+1 > c.length() {
		newMaxKey = newMinKey + c.length() - 1

		if newMaxKey <= c.minKey {
			// Everything collapses into the last bin.
			c.offset = newMinKey
			c.maxKey = newMaxKey
			c.bins = NewBinList(c.length())
			c.bins.Set(c.length()-1, c.count)
		} else {
			// The high end needs folding exactly when the clamped newMaxKey
			// cuts off bins the buffer currently holds above it.
			if c.maxKey > newMaxKey {
				collapseStart := newMaxKey - c.offset + 1
				collapseEnd := c.maxKey - c.offset + 1
				collapsed, _ := c.bins.SumRange(collapseStart, collapseEnd)
				c.bins.ReplaceWithZeros(collapseStart, collapseEnd, c.maxKey-newMaxKey)
				c.bins.Add(collapseStart-1, collapsed)
			}
			c.maxKey = newMaxKey
			c.shiftBins(c.offset - newMinKey)
		}

		c.minKey = newMinKey
		s.isCollapsed = true
	} else {
		c.centerBins(newMinKey, newMaxKey)
		c.minKey = newMinKey
		c.maxKey = newMaxKey
	}
}

func (s *CollapsingHighestStore) Add(index int, count float64) { s.core.add(index, count) }

func (s *CollapsingHighestStore) AddBin(b Bin) { s.core.add(b.Index, b.Count) }

func (s *CollapsingHighestStore) IsEmpty() bool { return s.core.isEmpty() }

func (s *CollapsingHighestStore) TotalCount() float64 { return s.core.totalCount() }

func (s *CollapsingHighestStore) MinIndex() (int, error) { return s.core.minIndex() }

func (s *CollapsingHighestStore) MaxIndex() (int, error) { return s.core.maxIndex() }

func (s *CollapsingHighestStore) KeyAtRank(rank float64, lower bool) int {
	return s.core.keyAtRank(rank, lower)
}

func (s *CollapsingHighestStore) ForEach(f func(index int, count float64) (stop bool)) {
	s.core.forEach(f)
}

func (s *CollapsingHighestStore) Clear() {
	s.core.clear()
	s.isCollapsed = false
}

func (s *CollapsingHighestStore) Copy() Store {
	cp := NewCollapsingHighestStoreWithChunkSize(s.binLimit, s.core.chunkSize)
	cp.core.copyFrom(&s.core)
	cp.isCollapsed = s.isCollapsed
	return cp
}

func (s *CollapsingHighestStore) ToProto() *sketchpb.Store { return s.core.toProto() }

func (s *CollapsingHighestStore) MergeWithProto(p *sketchpb.Store) error {
	return mergeWithProto(s, p)
}

// MergeWith merges other into s. If other's keys extend above s's (possibly
// newly collapsed) maximum, that high tail is summed from other's own
// buffer and folded into s's boundary bin before the remaining bins are
// pairwise-added — the mirror image of CollapsingLowestStore.MergeWith.
func (s *CollapsingHighestStore) MergeWith(other Store) {
	o, ok := other.(*CollapsingHighestStore)
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

	collapseEndIdx := o.core.maxKey - o.core.offset + 1
	collapseStartIdx := max(s.core.maxKey+1, o.core.minKey) - o.core.offset
	if collapseEndIdx > collapseStartIdx {
		collapsed, _ := o.core.bins.SumRange(collapseStartIdx, collapseEndIdx)
		s.core.bins.Add(s.core.length()-1, collapsed)
	} else {
		collapseStartIdx = collapseEndIdx
	}

	for key := o.core.minKey; key < collapseStartIdx+o.core.offset; key++ {
		s.core.bins.Add(key-s.core.offset, o.core.bins.Get(key-o.core.offset))
	}
	s.core.count += o.core.count
}
