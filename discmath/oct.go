package discmath

import "errors"

var ErrDivisionByZero = errors.New("division by zero")

// octPoly is x^8 + x^4 + x^3 + x^2 + 1
const octPoly = 0x11d

var (
	octExp [510]uint8
	octLog [256]uint8
	octMul [256][256]uint8
)

func init() {
	x := uint16(1)
	for i := range octExp {
		octExp[i] = uint8(x)
		x <<= 1
		if x&0x100 != 0 {
			x ^= octPoly
		}
	}

	for i := 0; i < 255; i++ {
		octLog[octExp[i]] = uint8(i)
	}

	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			octMul[a][b] = octExp[uint32(octLog[a])+uint32(octLog[b])]
		}
	}
}

func OctAdd(a, b uint8) uint8 {
	return a ^ b
}

func OctMul(a, b uint8) uint8 {
	return octMul[a][b]
}

// OctExp returns alpha^x.
func OctExp(x uint32) uint8 {
	return octExp[x%255]
}

func OctInverse(a uint8) (uint8, error) {
	if a == 0 {
		return 0, ErrDivisionByZero
	}
	return octExp[255-uint32(octLog[a])], nil
}

func OctDiv(a, b uint8) (uint8, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if a == 0 {
		return 0, nil
	}
	return octExp[uint32(octLog[a])+255-uint32(octLog[b])], nil
}
