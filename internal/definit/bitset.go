package definit

import "math/bits"

// bitset tracks definitely-assigned own properties by declaration index.
type bitset struct {
	words []uint64
	n     int
}

func newBitset(n int) bitset {
	return bitset{words: make([]uint64, (n+63)/64), n: n}
}

func (b *bitset) set(i int) {
	b.words[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b.words[i/64]&(1<<(uint(i)%64)) != 0
}

func (b *bitset) fill() {
	for i := 0; i < b.n; i++ {
		b.set(i)
	}
}

func (b bitset) count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// full reports whether every one of the n bits is set.
func (b bitset) full() bool {
	return b.count() == b.n
}

// firstMissing returns the lowest unset index, or -1.
func (b bitset) firstMissing() int {
	for i, w := range b.words {
		if w == ^uint64(0) {
			continue
		}
		idx := i*64 + bits.TrailingZeros64(^w)
		if idx < b.n {
			return idx
		}
	}
	return -1
}
