package discmath

import "math/bits"

// BitRow is a GF(2) row vector packed into 64-bit words.
type BitRow []uint64

func NewBitRow(cols uint32) BitRow {
	return make(BitRow, (cols+63)/64)
}

func (r BitRow) Set(col uint32) {
	r[col/64] |= 1 << (col % 64)
}

func (r BitRow) IsZero() bool {
	for _, w := range r {
		if w != 0 {
			return false
		}
	}
	return true
}

// RankGF2 keeps a reduced basis of inserted GF(2) rows. Every stored row
// lives in an arena slot indexed by its pivot, the lowest set column,
// and has no bits below it. Rank never decreases.
type RankGF2 struct {
	cols  uint32
	words uint32
	rank  uint32

	arena []uint64
	used  []bool
}

func NewRankGF2(cols uint32) *RankGF2 {
	return &RankGF2{
		cols:  cols,
		words: (cols + 63) / 64,
	}
}

func (r *RankGF2) Rank() uint32 {
	return r.rank
}

// Insert reduces row by the current basis and stores the remainder if it
// is not zero. Returns true when the rank has grown. Row is modified.
func (r *RankGF2) Insert(row BitRow) bool {
	if r.arena == nil {
		r.arena = make([]uint64, r.cols*r.words)
		r.used = make([]bool, r.cols)
	}

	for w := uint32(0); w < r.words; w++ {
		for row[w] != 0 {
			col := w*64 + uint32(bits.TrailingZeros64(row[w]))
			slot := r.arena[col*r.words : (col+1)*r.words]
			if !r.used[col] {
				copy(slot, row)
				r.used[col] = true
				r.rank++
				return true
			}

			for i := w; i < r.words; i++ {
				row[i] ^= slot[i]
			}
		}
	}
	return false
}

// Contains reports whether row is a combination of already inserted rows.
// Row is not modified.
func (r *RankGF2) Contains(row BitRow) bool {
	tmp := make(BitRow, len(row))
	copy(tmp, row)

	if r.arena == nil {
		return tmp.IsZero()
	}

	for w := uint32(0); w < r.words; w++ {
		for tmp[w] != 0 {
			col := w*64 + uint32(bits.TrailingZeros64(tmp[w]))
			if !r.used[col] {
				return false
			}

			slot := r.arena[col*r.words : (col+1)*r.words]
			for i := w; i < r.words; i++ {
				tmp[i] ^= slot[i]
			}
		}
	}
	return true
}
