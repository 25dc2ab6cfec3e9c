package store

import "github.com/relerror/ddsketch/sketchpb"

// overflowPolicy is the three-hook seam spec.md §9 describes: the base
// dense store, and the two collapsing variants, differ only in how they
// size a grown buffer, how they resolve a key to a bin index (deciding
// whether it lands in a collapsed boundary bin), and how they reconcile an
// out-of-capacity range. Everything else lives in denseCore.
type overflowPolicy interface {
	getNewLength(newMinKey, newMaxKey int) int
	getIndex(c *denseCore, key int) int
	adjust(c *denseCore, newMinKey, newMaxKey int)
}

// denseCore holds the state and behavior shared by DenseStore,
// CollapsingLowestStore and CollapsingHighestStore: the bin buffer, its key
// range, and the growth/merge/query logic that only depends on that range
// through the owning type's overflowPolicy.
type denseCore struct {
	policy    overflowPolicy
	bins      BinList
	count     float64
	minKey    int
	maxKey    int
	offset    int
	chunkSize int
}

func newDenseCore(policy overflowPolicy, chunkSize int) denseCore {
	return denseCore{
		policy:    policy,
		minKey:    sentinelMinKey,
		maxKey:    sentinelMaxKey,
		chunkSize: clampChunkSize(chunkSize),
	}
}

func (c *denseCore) length() int { return c.bins.Size() }

func (c *denseCore) isEmpty() bool { return c.count == 0 }

func (c *denseCore) totalCount() float64 { return c.count }

func (c *denseCore) minIndex() (int, error) {
	if c.isEmpty() {
		return 0, ErrUndefinedMinIndex
	}
	return c.minKey, nil
}

func (c *denseCore) maxIndex() (int, error) {
	if c.isEmpty() {
		return 0, ErrUndefinedMaxIndex
	}
	return c.maxKey, nil
}

func (c *denseCore) add(key int, count float64) {
	if count == 0 {
		return
	}
	idx := c.policy.getIndex(c, key)
	c.bins.Add(idx, count)
	c.count += count
}

// keyAtRank implements the shared scan of spec.md §4.3: walk bins in
// increasing key order, returning the first key whose running sum clears
// the rank threshold for the requested tie-breaking rule.
func (c *denseCore) keyAtRank(rank float64, lower bool) int {
	var running float64
	for i := 0; i < c.length(); i++ {
		running += c.bins.Get(i)
		if (lower && running > rank) || (!lower && running >= rank+1) {
			return i + c.offset
		}
	}
	return c.maxKey
}

func (c *denseCore) forEach(f func(index int, count float64) (stop bool)) {
	for key := c.minKey; key <= c.maxKey; key++ {
		if v := c.bins.Get(key - c.offset); v > 0 {
			if f(key, v) {
				return
			}
		}
	}
}

func (c *denseCore) clear() {
	c.bins = BinList{}
	c.count = 0
	c.minKey = sentinelMinKey
	c.maxKey = sentinelMaxKey
}

func (c *denseCore) copyFrom(o *denseCore) {
	bins := NewBinList(o.bins.Size())
	copy(bins.data, o.bins.data)
	c.bins = bins
	c.count = o.count
	c.minKey = o.minKey
	c.maxKey = o.maxKey
	c.offset = o.offset
	c.chunkSize = o.chunkSize
}

func (c *denseCore) toProto() *sketchpb.Store {
	if c.isEmpty() {
		return &sketchpb.Store{}
	}
	n := c.maxKey - c.minKey + 1
	counts := make([]float64, n)
	for i := 0; i < n; i++ {
		counts[i] = c.bins.Get(c.minKey - c.offset + i)
	}
	return &sketchpb.Store{
		ContiguousBinCounts:      counts,
		ContiguousBinIndexOffset: int32(c.minKey),
	}
}

// extendRange grows the bin buffer to include [key, secondKey], invoking the
// owner's adjust hook, per the "base dense" range-growth algorithm of
// spec.md §4.3.
func (c *denseCore) extendRange(key, secondKey int) {
	newMinKey := min3(key, secondKey, c.minKey)
	newMaxKey := max3(key, secondKey, c.maxKey)

	switch {
	case c.isEmpty():
		newLength := c.policy.getNewLength(newMinKey, newMaxKey)
		c.bins = NewBinList(newLength)
		c.offset = newMinKey
		c.minKey = newMinKey
		c.maxKey = newMaxKey
		c.policy.adjust(c, newMinKey, newMaxKey)
	case newMinKey >= c.minKey && newMaxKey < c.offset+c.length():
		// The new range already fits; just widen the tracked bounds.
		c.minKey = newMinKey
		c.maxKey = newMaxKey
	default:
		newLength := c.policy.getNewLength(newMinKey, newMaxKey)
		if newLength > c.length() {
			c.bins.ExtendBackZeros(newLength - c.length())
		}
		c.policy.adjust(c, newMinKey, newMaxKey)
	}
}

// centerBins re-centers the buffer around [newMinKey, newMaxKey] so both
// tails have headroom for future growth, per spec.md §4.3's Adjust.
func (c *denseCore) centerBins(newMinKey, newMaxKey int) {
	middleKey := newMinKey + (newMaxKey-newMinKey+1)/2
	c.shiftBins(c.offset + c.length()/2 - middleKey)
}

// shiftBins slides the buffer contents by shift positions, updating offset
// to match, without resizing.
func (c *denseCore) shiftBins(shift int) {
	if shift == 0 {
		return
	}
	if shift > 0 {
		c.bins.TruncateBack(shift)
		c.bins.ExtendFrontZeros(shift)
	} else {
		abs := -shift
		c.bins.TruncateFront(abs)
		c.bins.ExtendBackZeros(abs)
	}
	c.offset -= shift
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
