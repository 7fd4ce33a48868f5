package discmath

import (
	"crypto/subtle"
	"encoding/binary"
)

// OctVecAdd sets x = x + y, y must be at least as long as x.
func OctVecAdd(x, y []byte) {
	subtle.XORBytes(x, x, y[:len(x)])
}

func OctVecMul(vector []byte, multiplier uint8) {
	table := &octMul[multiplier]
	for i := range vector {
		vector[i] = table[vector[i]]
	}
}

// OctVecMulAdd sets x = x + y*multiplier.
func OctVecMulAdd(x, y []byte, multiplier uint8) {
	n := len(x)
	table := &octMul[multiplier]

	pos := 0
	for ; pos+8 <= n; pos += 8 {
		var prod uint64
		prod |= uint64(table[y[pos]])
		prod |= uint64(table[y[pos+1]]) << 8
		prod |= uint64(table[y[pos+2]]) << 16
		prod |= uint64(table[y[pos+3]]) << 24
		prod |= uint64(table[y[pos+4]]) << 32
		prod |= uint64(table[y[pos+5]]) << 40
		prod |= uint64(table[y[pos+6]]) << 48
		prod |= uint64(table[y[pos+7]]) << 56

		binary.LittleEndian.PutUint64(x[pos:], binary.LittleEndian.Uint64(x[pos:])^prod)
	}

	for ; pos < n; pos++ {
		x[pos] ^= table[y[pos]]
	}
}
