package raptorq

import (
	"fmt"

	"github.com/andreypfau/raptorq/discmath"
)

// MaxSourceSymbols is the largest K' of the systematic index table.
const MaxSourceSymbols = 56403

type systematicIndex struct {
	KPrime uint32
	J      uint32
	S      uint32
	H      uint32
	W      uint32
}

// blockParams are the RFC 6330 coding parameters of one source block.
type blockParams struct {
	K      uint32
	KPrime uint32
	J      uint32
	S      uint32
	H      uint32
	W      uint32
	L      uint32
	P      uint32
	P1     uint32
	U      uint32
	B      uint32
}

func lookupSystematicIndex(k uint32) (systematicIndex, error) {
	for _, si := range systematicIndices {
		if si.KPrime >= k {
			return si, nil
		}
	}
	return systematicIndex{}, fmt.Errorf("%w: %d source symbols is more than %d", ErrInvalidParameters, k, MaxSourceSymbols)
}

func calcParams(k uint32) (*blockParams, error) {
	if k == 0 {
		return nil, fmt.Errorf("%w: source block cannot be empty", ErrInvalidParameters)
	}

	si, err := lookupSystematicIndex(k)
	if err != nil {
		return nil, err
	}

	p := &blockParams{
		K:      k,
		KPrime: si.KPrime,
		J:      si.J,
		S:      si.S,
		H:      si.H,
		W:      si.W,
		L:      si.KPrime + si.S + si.H,
		B:      si.W - si.S,
	}

	p.P = p.L - p.W
	p.U = p.P - p.H
	p.P1 = p.P
	for !isPrime(p.P1) {
		p.P1++
	}

	return p, nil
}

// toISI converts an encoding symbol id to the internal symbol id,
// repair symbols skip the padding symbols of the extended block.
func (p *blockParams) toISI(esi uint32) uint32 {
	if esi < p.K {
		return esi
	}
	return esi + p.KPrime - p.K
}

func random(y, i, m uint32) uint32 {
	x0 := (y + i) % 256
	x1 := (y/256 + i) % 256
	x2 := (y/(256*256) + i) % 256
	x3 := (y/(256*256*256) + i) % 256
	return (randTableV0[x0] ^ randTableV1[x1] ^ randTableV2[x2] ^ randTableV3[x3]) % m
}

var degreeDistribution = [...]uint32{
	0, 5243, 529531, 704294, 791675, 844104, 879057, 904023, 922747, 937311, 948962,
	958494, 966438, 973160, 978921, 983914, 988283, 992138, 995565, 998631, 1001391, 1003887,
	1006157, 1008229, 1010129, 1011876, 1013490, 1014983, 1016370, 1017662, 1048576,
}

func (p *blockParams) degree(v uint32) uint32 {
	for d := 1; d < len(degreeDistribution); d++ {
		if v < degreeDistribution[d] {
			if x := p.W - 2; x < uint32(d) {
				return x
			}
			return uint32(d)
		}
	}
	panic("should be unreachable")
}

type tuple struct {
	d  uint32 // [1,30] LT degree
	a  uint32 // [1,W)
	b  uint32 // [0,W)
	d1 uint32 // [2,3]  PI degree
	a1 uint32 // [1,P1)
	b1 uint32 // [0,P1)
}

func (p *blockParams) tuple(x uint32) tuple {
	ja := 53591 + p.J*997
	if ja%2 == 0 {
		ja++
	}

	y := 10267*(p.J+1) + x*ja
	v := random(y, 0, 1<<20)

	t := tuple{
		d:  p.degree(v),
		a:  1 + random(y, 1, p.W-1),
		b:  random(y, 2, p.W),
		d1: 2,
		a1: 1 + random(x, 4, p.P1-1),
		b1: random(x, 5, p.P1),
	}
	if t.d < 4 {
		t.d1 = 2 + random(x, 3, 2)
	}
	return t
}

// eachColumn calls fn for every intermediate symbol combined into the
// symbol with the given isi.
func (p *blockParams) eachColumn(isi uint32, fn func(col uint32)) {
	t := p.tuple(isi)

	fn(t.b)
	for j := uint32(1); j < t.d; j++ {
		t.b = (t.b + t.a) % p.W
		fn(t.b)
	}

	for t.b1 >= p.P {
		t.b1 = (t.b1 + t.a1) % p.P1
	}
	fn(p.W + t.b1)

	for j := uint32(1); j < t.d1; j++ {
		t.b1 = (t.b1 + t.a1) % p.P1
		for t.b1 >= p.P {
			t.b1 = (t.b1 + t.a1) % p.P1
		}
		fn(p.W + t.b1)
	}
}

// eachLDPC calls fn for every non zero entry of the S LDPC constraint rows.
func (p *blockParams) eachLDPC(fn func(row, col uint32)) {
	for i := uint32(0); i < p.B; i++ {
		a := 1 + i/p.S

		b := i % p.S
		fn(b, i)
		b = (b + a) % p.S
		fn(b, i)
		b = (b + a) % p.S
		fn(b, i)
	}

	for i := uint32(0); i < p.S; i++ {
		fn(i, i+p.B)
	}

	for i := uint32(0); i < p.S; i++ {
		fn(i, (i%p.P)+p.W)
		fn(i, ((i+1)%p.P)+p.W)
	}
}

// encodingRow returns the binary constraint row of the given isi.
func (p *blockParams) encodingRow(isi uint32) discmath.BitRow {
	row := discmath.NewBitRow(p.L)
	p.eachColumn(isi, row.Set)
	return row
}

// genSymbol computes the encoding symbol with the given isi from intermediate symbols.
func (p *blockParams) genSymbol(intermediate *discmath.MatrixGF256, isi uint32) []byte {
	res := make([]byte, intermediate.ColsNum())
	p.eachColumn(isi, func(col uint32) {
		discmath.OctVecAdd(res, intermediate.GetRow(col))
	})
	return res
}

// hdpcApply adds the H HDPC rows (MT * GAMMA) to dst rows starting at first.
// load fills buf with the value of the i-th of K'+S columns, buf is zeroed before.
func (p *blockParams) hdpcApply(dst *discmath.MatrixGF256, first uint32, load func(i uint32, buf []byte)) {
	alpha := discmath.OctExp(1)
	acc := make([]byte, dst.ColsNum())
	buf := make([]byte, dst.ColsNum())

	n := p.KPrime + p.S
	for i := uint32(0); i < n; i++ {
		discmath.OctVecMul(acc, alpha)
		for j := range buf {
			buf[j] = 0
		}
		load(i, buf)
		discmath.OctVecAdd(acc, buf)

		if i+1 < n {
			a := random(i+1, 6, p.H)
			b := (a + random(i+1, 7, p.H-1) + 1) % p.H
			dst.RowAdd(first+a, acc)
			dst.RowAdd(first+b, acc)
			continue
		}

		for h := uint32(0); h < p.H; h++ {
			dst.RowAddMul(first+h, acc, discmath.OctExp(h))
		}
	}
}

func isPrime(n uint32) bool {
	if n <= 3 {
		return n > 1
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}

	i := uint32(5)
	w := uint32(2)
	for i*i <= n {
		if n%i == 0 {
			return false
		}
		i += w
		w = 6 - w
	}
	return true
}
