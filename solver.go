package raptorq

import (
	"errors"
	"fmt"

	"github.com/andreypfau/raptorq/discmath"
)

// encodingMatrix is the constraint matrix of a block for a fixed set of
// known symbols, already ordered by the inactivation decoder. It is never
// modified after construction and can be shared.
type encodingMatrix struct {
	params *blockParams
	isis   []uint32

	// a is the binary part (LDPC rows followed by one row per isi)
	// with rows and columns permuted, HDPC rows are generated on solve.
	a        *discmath.SparseMatrixGF2
	side     uint32
	rowOrder []uint32
	colPos   []uint32
}

func buildMatrix(p *blockParams, isis []uint32) *encodingMatrix {
	a := discmath.NewSparseMatrixGF2(p.S+uint32(len(isis)), p.L)
	p.eachLDPC(a.Set)
	for i, isi := range isis {
		row := p.S + uint32(i)
		p.eachColumn(isi, func(col uint32) {
			a.Set(row, col)
		})
	}

	side, rowOrder, colOrder := inactivateDecode(a, p.P)
	colPos := discmath.InversePermutation(colOrder)

	return &encodingMatrix{
		params:   p,
		isis:     isis,
		a:        a.Permute(discmath.InversePermutation(rowOrder), colPos),
		side:     side,
		rowOrder: rowOrder,
		colPos:   colPos,
	}
}

// memSize estimates bytes held by the matrix.
func (m *encodingMatrix) memSize() int64 {
	return int64(m.a.MemSize() + 4*(len(m.isis)+len(m.rowOrder)+len(m.colPos)))
}

// solve computes the L intermediate symbols from symbols, given in the
// same order as the isis of the matrix.
func (m *encodingMatrix) solve(symbols [][]byte) (*discmath.MatrixGF256, error) {
	p := m.params
	if len(symbols) != len(m.isis) {
		return nil, fmt.Errorf("%w: %d symbols for %d rows", ErrInvalidParameters, len(symbols), len(m.isis))
	}
	if len(symbols) == 0 {
		return nil, ErrInsufficientSymbols
	}

	a := m.a
	rows := a.RowsNum()
	side := m.side
	inactive := p.L - side

	symSz := uint32(len(symbols[0]))
	d := discmath.NewMatrixGF256(rows, symSz)
	for row, from := range m.rowOrder {
		if from < p.S {
			continue
		}
		sym := symbols[from-p.S]
		if uint32(len(sym)) != symSz {
			return nil, fmt.Errorf("%w: symbol %d has size %d, should be %d", ErrInvalidParameters, from-p.S, len(sym), symSz)
		}
		d.RowSet(uint32(row), sym)
	}

	c := discmath.NewMatrixGF256(p.L, symSz)
	for row := uint32(0); row < side; row++ {
		c.RowSet(row, d.GetRow(row))
	}

	// e is the part of peeled rows in inactive columns
	e := discmath.NewPlainMatrixGF2(side, inactive)
	for row := uint32(0); row < side; row++ {
		for _, col := range a.GetCols(row) {
			if col >= side {
				e.Set(row, col-side)
			}
		}
	}

	// make the peeled part identity
	for i := uint32(0); i < side; i++ {
		for _, row := range a.GetRows(i) {
			if row <= i || row >= side {
				continue
			}
			e.RowAdd(row, e.GetRow(i))
			d.RowAdd(row, d.GetRow(i))
		}
	}

	lower := rows - side
	smallA := discmath.NewMatrixGF256(lower+p.H, inactive)
	smallD := discmath.NewMatrixGF256(lower+p.H, symSz)

	for row := side; row < rows; row++ {
		at := row - side
		smallD.RowSet(at, d.GetRow(row))

		cols := a.GetCols(row)
		for _, col := range cols {
			if col >= side {
				smallA.Set(at, col-side, 1)
			}
		}
		dst := smallA.GetRow(at)
		for _, col := range cols {
			if col < side {
				e.AddRowTo(dst, col)
				smallD.RowAdd(at, d.GetRow(col))
			}
		}
	}

	// HDPC rows, their identity part is in the last H columns
	for h := uint32(0); h < p.H; h++ {
		smallA.Set(lower+h, inactive-p.H+h, 1)
	}
	p.hdpcApply(smallA, lower, func(col uint32, buf []byte) {
		if pos := m.colPos[col]; pos < side {
			e.AddRowTo(buf, pos)
		} else {
			buf[pos-side] = 1
		}
	})
	p.hdpcApply(smallD, lower, func(col uint32, buf []byte) {
		if pos := m.colPos[col]; pos < side {
			copy(buf, d.GetRow(pos))
		}
	})

	smallC, err := discmath.GaussianElimination(smallA, smallD)
	if err != nil {
		if errors.Is(err, discmath.ErrNotSolvable) {
			return nil, ErrInsufficientSymbols
		}
		return nil, fmt.Errorf("failed to calc gauss elimination: %w", err)
	}

	for i := uint32(0); i < inactive; i++ {
		c.RowSet(side+i, smallC.GetRow(i))
	}

	for row := uint32(0); row < side; row++ {
		for _, col := range a.GetCols(row) {
			if col == row {
				continue
			}
			c.RowAdd(row, c.GetRow(col))
		}
	}

	return c.ApplyPermutation(m.colPos), nil
}
