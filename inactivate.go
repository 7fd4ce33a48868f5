package raptorq

import (
	"github.com/andreypfau/raptorq/discmath"
)

// peeling orders rows and columns of the binary part of the constraint
// matrix. The row with the fewest remaining active entries is taken
// next, one of its columns becomes the pivot and the others are
// inactivated.
type peeling struct {
	m      *discmath.SparseMatrixGF2
	active uint32

	rowDone []bool
	colDone []bool
	colCnt  []uint32
	rowCnt  []uint32
	// rowXor is a xor of the remaining active columns of a row,
	// the column itself when only one is left.
	rowXor []uint32

	// byCnt holds rows sorted by rowCnt, rows with count c start at first[c].
	byCnt []uint32
	at    []uint32
	first []uint32

	pivotRows []uint32
	pivotCols []uint32
	inactive  []uint32
}

// inactivateDecode returns the number of peeled rows with the row and
// column orders. Rows and columns before side form a lower triangular
// matrix with ones on the diagonal. The last pi columns are always inactive.
func inactivateDecode(m *discmath.SparseMatrixGF2, pi uint32) (side uint32, rowOrder, colOrder []uint32) {
	rows := m.RowsNum()
	active := m.ColsNum() - pi

	pl := &peeling{
		m:         m,
		active:    active,
		rowDone:   make([]bool, rows),
		colDone:   make([]bool, active),
		colCnt:    make([]uint32, active),
		rowCnt:    make([]uint32, rows),
		rowXor:    make([]uint32, rows),
		pivotRows: make([]uint32, 0, rows),
		pivotCols: make([]uint32, 0, active),
	}

	for col := uint32(0); col < active; col++ {
		for _, row := range m.GetRows(col) {
			pl.colCnt[col]++
			pl.rowCnt[row]++
			pl.rowXor[row] ^= col
		}
	}

	pl.bucket()
	for pl.first[1] < rows {
		pl.peel()
	}

	for col := uint32(0); col < active; col++ {
		if !pl.colDone[col] {
			pl.inactive = append(pl.inactive, col)
		}
	}

	rowOrder = pl.pivotRows
	for row := uint32(0); row < rows; row++ {
		if !pl.rowDone[row] {
			rowOrder = append(rowOrder, row)
		}
	}

	side = uint32(len(pl.pivotCols))
	colOrder = make([]uint32, 0, m.ColsNum())
	colOrder = append(colOrder, pl.pivotCols...)
	for i := len(pl.inactive) - 1; i >= 0; i-- {
		colOrder = append(colOrder, pl.inactive[i])
	}
	for col := active; col < m.ColsNum(); col++ {
		colOrder = append(colOrder, col)
	}

	return side, rowOrder, colOrder
}

// bucket sorts rows by count.
func (pl *peeling) bucket() {
	rows := uint32(len(pl.rowCnt))

	pl.first = make([]uint32, pl.active+2)
	for _, cnt := range pl.rowCnt {
		pl.first[cnt+1]++
	}
	for i := 1; i < len(pl.first); i++ {
		pl.first[i] += pl.first[i-1]
	}

	next := make([]uint32, len(pl.first))
	copy(next, pl.first)

	pl.byCnt = make([]uint32, rows)
	pl.at = make([]uint32, rows)
	for row, cnt := range pl.rowCnt {
		pos := next[cnt]
		next[cnt]++
		pl.byCnt[pos] = uint32(row)
		pl.at[row] = pos
	}
}

func (pl *peeling) peel() {
	row := pl.byCnt[pl.first[1]]
	pivot := pl.pick(row)

	pl.pivotRows = append(pl.pivotRows, row)
	pl.pivotCols = append(pl.pivotCols, pivot)

	for _, col := range pl.m.GetCols(row) {
		if col >= pl.active || pl.colDone[col] {
			continue
		}
		if col != pivot {
			pl.inactive = append(pl.inactive, col)
		}
		pl.remove(col)
	}
	pl.rowDone[row] = true
}

// pick returns the active column of the row appearing in the fewest rows.
func (pl *peeling) pick(row uint32) uint32 {
	if pl.rowCnt[row] == 1 {
		return pl.rowXor[row]
	}

	best, found := uint32(0), false
	for _, col := range pl.m.GetCols(row) {
		if col >= pl.active || pl.colDone[col] {
			continue
		}
		if !found || pl.colCnt[col] < pl.colCnt[best] {
			best, found = col, true
		}
	}
	return best
}

// remove takes the column out of all rows not peeled yet.
func (pl *peeling) remove(col uint32) {
	pl.colDone[col] = true
	for _, row := range pl.m.GetRows(col) {
		if pl.rowDone[row] {
			continue
		}

		cnt := pl.rowCnt[row]
		head := pl.first[cnt]
		other := pl.byCnt[head]
		pos := pl.at[row]

		pl.byCnt[head], pl.byCnt[pos] = row, other
		pl.at[row], pl.at[other] = head, pos

		pl.first[cnt]++
		pl.rowCnt[row]--
		pl.rowXor[row] ^= col
	}
}
