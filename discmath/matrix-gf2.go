package discmath

import "math/bits"

// elSize is a size of array's element in bits
const elSize = 8

// PlainMatrixGF2 is a dense bit-packed matrix over GF(2).
type PlainMatrixGF2 struct {
	rows, cols uint32
	rowSize    uint32
	data       []byte
}

func NewPlainMatrixGF2(rows, cols uint32) *PlainMatrixGF2 {
	rowSize := cols / elSize
	if cols%elSize > 0 {
		rowSize++
	}

	return &PlainMatrixGF2{
		rows:    rows,
		cols:    cols,
		rowSize: rowSize,
		data:    make([]byte, rows*rowSize),
	}
}

func (m *PlainMatrixGF2) Set(row, col uint32) {
	elIdx, colIdx := m.getElementPosition(row, col)
	m.data[elIdx] |= 1 << colIdx
}

func (m *PlainMatrixGF2) GetRow(row uint32) []byte {
	first := row * m.rowSize
	return m.data[first : first+m.rowSize]
}

func (m *PlainMatrixGF2) RowAdd(row uint32, what []byte) {
	OctVecAdd(m.GetRow(row), what)
}

// AddRowTo adds the row to dst, which holds one GF(256) element per column.
func (m *PlainMatrixGF2) AddRowTo(dst []uint8, row uint32) {
	for i, el := range m.GetRow(row) {
		for el != 0 {
			col := uint32(i)*elSize + uint32(bits.TrailingZeros8(el))
			dst[col] = OctAdd(dst[col], 1)
			el &= el - 1
		}
	}
}

// getElement returns element in matrix by row and col. Possible values: 0 or 1
func (m *PlainMatrixGF2) getElement(row, col uint32) byte {
	elIdx, colIdx := m.getElementPosition(row, col)

	return (m.data[elIdx] & (1 << colIdx)) >> colIdx
}

// getElementPosition returns index of element in array and offset in this element
func (m *PlainMatrixGF2) getElementPosition(row, col uint32) (uint32, byte) {
	return (row * m.rowSize) + col/elSize, byte(col % elSize)
}
