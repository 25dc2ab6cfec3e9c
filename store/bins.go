package store

import "github.com/pkg/errors"

// ErrIndexOutOfBounds is returned by BinList operations given a range that
// does not fit within the list's current bounds.
var ErrIndexOutOfBounds = errors.New("store: index out of bounds")

// BinList is a dense, random-access sequence of non-negative bin counts. It
// is the deque-like buffer spec.md §4.2 calls for: growth only ever happens
// at the front or back, and a logical offset tracked by the owning Store
// gives the buffer's position 0 a meaningful bin key. A plain slice with
// copy-based front extension satisfies the amortized-cost contract per
// spec.md §9 ("a plain contiguous array... is an acceptable alternative").
type BinList struct {
	data []float64
}

// NewBinList returns a BinList of n zeros.
func NewBinList(n int) BinList {
	return BinList{data: make([]float64, n)}
}

// Size returns the current length.
func (b *BinList) Size() int { return len(b.data) }

// Get returns the count at i. The caller must ensure 0 <= i < Size().
func (b *BinList) Get(i int) float64 { return b.data[i] }

// Set stores v at i. The caller must ensure 0 <= i < Size().
func (b *BinList) Set(i int, v float64) { b.data[i] = v }

// Add adds delta to the count at i. The caller must ensure 0 <= i < Size().
func (b *BinList) Add(i int, delta float64) { b.data[i] += delta }

// SumRange returns the sum of elements in [a, b).
func (bl *BinList) SumRange(a, b int) (float64, error) {
	if a < 0 || b > len(bl.data) || a > b {
		return 0, errors.Wrapf(ErrIndexOutOfBounds, "sum_range(%d, %d) of %d", a, b, len(bl.data))
	}
	var sum float64
	for _, v := range bl.data[a:b] {
		sum += v
	}
	return sum, nil
}

// AllZero reports whether every element is exactly 0.
func (b *BinList) AllZero() bool {
	for _, v := range b.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// ExtendFrontZeros prepends n zeros.
func (b *BinList) ExtendFrontZeros(n int) {
	if n <= 0 {
		return
	}
	extended := make([]float64, len(b.data)+n)
	copy(extended[n:], b.data)
	b.data = extended
}

// ExtendBackZeros appends n zeros.
func (b *BinList) ExtendBackZeros(n int) {
	if n <= 0 {
		return
	}
	b.data = append(b.data, make([]float64, n)...)
}

// TruncateFront drops n elements from the front.
func (b *BinList) TruncateFront(n int) {
	b.data = b.data[n:]
}

// TruncateBack drops n elements from the back.
func (b *BinList) TruncateBack(n int) {
	b.data = b.data[:len(b.data)-n]
}

// ReplaceWithZeros removes [a, b) and inserts n zeros at a. The resulting
// length changes by n - (b - a).
func (bl *BinList) ReplaceWithZeros(a, b, n int) {
	head := bl.data[:a]
	tail := bl.data[b:]
	replaced := make([]float64, 0, len(head)+n+len(tail))
	replaced = append(replaced, head...)
	replaced = append(replaced, make([]float64, n)...)
	replaced = append(replaced, tail...)
	bl.data = replaced
}
