// Package bitmap is a fixed-size set of row positions backed by 64-bit
// words. Transforms use it to mark the rows of a table they keep.
package bitmap

import "math/bits"

// Bitmap holds the positions [0, n) for the n given to New.
type Bitmap struct {
	data []uint64
	n    int
}

// New returns an empty bitmap for positions [0, n). n <= 0 gives a bitmap
// that holds nothing.
func New(n int) *Bitmap {
	if n <= 0 {
		return &Bitmap{}
	}
	return &Bitmap{data: make([]uint64, (n+63)/64), n: n}
}

// Len is the capacity given to New.
func (b *Bitmap) Len() int { return b.n }

// Add marks pos. Positions outside [0, Len()) are ignored.
func (b *Bitmap) Add(pos int) {
	if pos < 0 || pos >= b.n {
		return
	}
	b.data[pos/64] |= 1 << uint(pos%64)
}

// Has reports whether pos is marked.
func (b *Bitmap) Has(pos int) bool {
	if pos < 0 || pos >= b.n {
		return false
	}
	return b.data[pos/64]&(1<<uint(pos%64)) != 0
}

// Count returns the number of marked positions.
func (b *Bitmap) Count() int {
	c := 0
	for _, w := range b.data {
		c += bits.OnesCount64(w)
	}
	return c
}
