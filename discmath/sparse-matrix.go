package discmath

// SparseMatrixGF2 is a binary matrix kept as lists of non zero positions
// of every row and every column.
type SparseMatrixGF2 struct {
	rows, cols uint32
	nonZeroes  int

	rowCols [][]uint32
	colRows [][]uint32
}

func NewSparseMatrixGF2(rows, cols uint32) *SparseMatrixGF2 {
	return &SparseMatrixGF2{
		rows:    rows,
		cols:    cols,
		rowCols: make([][]uint32, rows),
		colRows: make([][]uint32, cols),
	}
}

// Set puts 1 at the position, setting it again changes nothing.
func (s *SparseMatrixGF2) Set(row, col uint32) {
	if row >= s.rows {
		panic("row is out of range")
	}
	if col >= s.cols {
		panic("col is out of range")
	}

	for _, c := range s.rowCols[row] {
		if c == col {
			return
		}
	}
	s.rowCols[row] = append(s.rowCols[row], col)
	s.colRows[col] = append(s.colRows[col], row)
	s.nonZeroes++
}

func (s *SparseMatrixGF2) ColsNum() uint32 {
	return s.cols
}

func (s *SparseMatrixGF2) RowsNum() uint32 {
	return s.rows
}

// GetCols returns columns set in the row in insertion order.
// The result is shared with the matrix and must not be modified.
func (s *SparseMatrixGF2) GetCols(row uint32) []uint32 {
	return s.rowCols[row]
}

// GetRows returns rows set in the column, shared like in GetCols.
func (s *SparseMatrixGF2) GetRows(col uint32) []uint32 {
	return s.colRows[col]
}

// Permute returns a matrix with element (r, c) moved to (rowPos[r], colPos[c]).
func (s *SparseMatrixGF2) Permute(rowPos, colPos []uint32) *SparseMatrixGF2 {
	res := &SparseMatrixGF2{
		rows:      s.rows,
		cols:      s.cols,
		nonZeroes: s.nonZeroes,
		rowCols:   make([][]uint32, s.rows),
		colRows:   make([][]uint32, s.cols),
	}

	buf := make([]uint32, 2*s.nonZeroes)
	take := func(n int) []uint32 {
		v := buf[:n:n]
		buf = buf[n:]
		return v
	}

	for row, cols := range s.rowCols {
		dst := take(len(cols))
		for i, c := range cols {
			dst[i] = colPos[c]
		}
		res.rowCols[rowPos[row]] = dst
	}
	for col, rows := range s.colRows {
		dst := take(len(rows))
		for i, r := range rows {
			dst[i] = rowPos[r]
		}
		res.colRows[colPos[col]] = dst
	}
	return res
}

// MemSize estimates the number of bytes held by the matrix.
func (s *SparseMatrixGF2) MemSize() int {
	const sliceHeader = 24
	return 2*4*s.nonZeroes + sliceHeader*int(s.rows+s.cols)
}
