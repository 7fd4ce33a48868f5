package discmath

import (
	"errors"
	"fmt"
)

var ErrNotSolvable = errors.New("not solvable")

// GaussianElimination solves a * x = d and returns x, a and d are
// modified. Rows of a beyond its column count are only used as pivot
// candidates.
func GaussianElimination(a, d *MatrixGF256) (*MatrixGF256, error) {
	defaultMetrics.store(a.RowsNum(), a.ColsNum())

	rows, cols := a.RowsNum(), a.ColsNum()
	if rows < cols {
		return nil, ErrNotSolvable
	}

	// order[i] is the row holding the pivot of column i
	order := make([]uint32, rows)
	for i := range order {
		order[i] = uint32(i)
	}

	for col := uint32(0); col < cols; col++ {
		at := col
		for at < rows && a.Get(order[at], col) == 0 {
			at++
		}
		if at == rows {
			return nil, ErrNotSolvable
		}
		order[col], order[at] = order[at], order[col]

		pivot := order[col]
		pv := a.Get(pivot, col)
		for i := col + 1; i < rows; i++ {
			row := order[i]
			v := a.Get(row, col)
			if v == 0 {
				continue
			}

			f, err := OctDiv(v, pv)
			if err != nil {
				return nil, fmt.Errorf("failed to eliminate column %d: %w", col, err)
			}
			a.RowAddMul(row, a.GetRow(pivot), f)
			d.RowAddMul(row, d.GetRow(pivot), f)
		}
	}

	// a is upper triangular in pivot order now
	for col := cols; col > 0; col-- {
		pivot := order[col-1]

		inv, err := OctInverse(a.Get(pivot, col-1))
		if err != nil {
			return nil, fmt.Errorf("failed to normalize pivot %d: %w", col-1, err)
		}
		d.RowMul(pivot, inv)

		for i := uint32(0); i < col-1; i++ {
			row := order[i]
			d.RowAddMul(row, d.GetRow(pivot), a.Get(row, col-1))
		}
	}

	return d.ApplyPermutation(order[:cols]), nil
}
