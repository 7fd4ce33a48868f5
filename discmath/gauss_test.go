package discmath

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestGaussianElimination(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	const n, symSz = 12, 16

	for iter := 0; iter < 20; iter++ {
		x := NewMatrixGF256(n, symSz)
		rnd.Read(x.Data)

		// lower unitriangular times upper unitriangular, always invertible
		lo := NewMatrixGF256(n, n)
		up := NewMatrixGF256(n, n)
		for i := uint32(0); i < n; i++ {
			lo.Set(i, i, 1)
			up.Set(i, i, 1)
			for j := uint32(0); j < i; j++ {
				lo.Set(i, j, uint8(rnd.Intn(256)))
				up.Set(j, i, uint8(rnd.Intn(256)))
			}
		}
		a := mulDense(lo, up)
		d := mulDense(a, x)

		got, err := GaussianElimination(cloneMatrix(a), cloneMatrix(d))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got.Data, x.Data) {
			t.Fatal("solution mismatch at iteration", iter)
		}
	}

	if !strings.Contains(GetMetrics(), "--- Rows ---") {
		t.Fatal("metrics are not collected")
	}
}

func TestGaussianEliminationSingular(t *testing.T) {
	a := NewMatrixGF256(3, 3)
	a.Set(0, 0, 1)
	a.Set(1, 0, 1)
	a.Set(2, 2, 1)

	_, err := GaussianElimination(a, NewMatrixGF256(3, 4))
	if !errors.Is(err, ErrNotSolvable) {
		t.Fatal("singular matrix should not be solvable, got", err)
	}
}

func TestGaussianEliminationOverdetermined(t *testing.T) {
	// x = [3 5], first row is zero, last one duplicates the second
	a := &MatrixGF256{Rows: 4, Cols: 2, Data: []uint8{
		0, 0,
		1, 1,
		0, 7,
		1, 1,
	}}
	d := &MatrixGF256{Rows: 4, Cols: 1, Data: []uint8{
		0,
		OctAdd(3, 5),
		OctMul(7, 5),
		OctAdd(3, 5),
	}}

	got, err := GaussianElimination(a, d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, []uint8{3, 5}) {
		t.Fatal("wrong solution", got.Data)
	}

	if _, err = GaussianElimination(NewMatrixGF256(1, 2), NewMatrixGF256(1, 1)); !errors.Is(err, ErrNotSolvable) {
		t.Fatal("fewer rows than columns should not be solvable, got", err)
	}
}

func cloneMatrix(m *MatrixGF256) *MatrixGF256 {
	return &MatrixGF256{Rows: m.Rows, Cols: m.Cols, Data: append([]uint8{}, m.Data...)}
}

func mulDense(a, b *MatrixGF256) *MatrixGF256 {
	res := NewMatrixGF256(a.RowsNum(), b.ColsNum())
	for i := uint32(0); i < a.RowsNum(); i++ {
		for k := uint32(0); k < a.ColsNum(); k++ {
			res.RowAddMul(i, b.GetRow(k), a.Get(i, k))
		}
	}
	return res
}
