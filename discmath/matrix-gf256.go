package discmath

// MatrixGF256 is a dense row-major matrix over GF(256), Data holds
// Rows rows of Cols octets each.
type MatrixGF256 struct {
	Rows, Cols uint32
	Data       []uint8
}

func NewMatrixGF256(rows, cols uint32) *MatrixGF256 {
	return &MatrixGF256{Rows: rows, Cols: cols, Data: make([]uint8, rows*cols)}
}

func (m *MatrixGF256) RowsNum() uint32 { return m.Rows }

func (m *MatrixGF256) ColsNum() uint32 { return m.Cols }

func (m *MatrixGF256) offset(row uint32) uint32 {
	return row * m.Cols
}

func (m *MatrixGF256) Get(row, col uint32) uint8 {
	return m.Data[m.offset(row)+col]
}

func (m *MatrixGF256) Set(row, col uint32, v uint8) {
	m.Data[m.offset(row)+col] = v
}

// GetRow returns the row backed by the matrix.
func (m *MatrixGF256) GetRow(row uint32) []uint8 {
	from := m.offset(row)
	return m.Data[from : from+m.Cols : from+m.Cols]
}

func (m *MatrixGF256) RowSet(row uint32, src []uint8) {
	copy(m.GetRow(row), src)
}

// RowMul multiplies the row by factor.
func (m *MatrixGF256) RowMul(row uint32, factor uint8) {
	if factor == 1 {
		return
	}
	OctVecMul(m.GetRow(row), factor)
}

// RowAdd adds src to the row.
func (m *MatrixGF256) RowAdd(row uint32, src []uint8) {
	OctVecAdd(m.GetRow(row), src)
}

// RowAddMul adds src multiplied by factor to the row.
func (m *MatrixGF256) RowAddMul(row uint32, src []uint8, factor uint8) {
	if factor == 0 {
		return
	}
	if factor == 1 {
		m.RowAdd(row, src)
		return
	}
	OctVecMulAdd(m.GetRow(row), src, factor)
}

// ApplyPermutation returns a new matrix with row i taken from row order[i],
// order may select a subset of rows.
func (m *MatrixGF256) ApplyPermutation(order []uint32) *MatrixGF256 {
	res := NewMatrixGF256(uint32(len(order)), m.Cols)
	for i, from := range order {
		res.RowSet(uint32(i), m.GetRow(from))
	}
	return res
}
