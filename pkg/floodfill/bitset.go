package floodfill

// bitset marks visited pixels, one bit per pixel.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) get(i int) bool {
	return b[i>>6]&(1<<(uint(i)&63)) != 0
}

func (b bitset) set(i int) {
	b[i>>6] |= 1 << (uint(i) & 63)
}
