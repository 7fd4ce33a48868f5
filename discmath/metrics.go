package discmath

import (
	"fmt"
	"sync"
)

var defaultMetrics = newMetrics()

// metrics keeps sizes of matrices passed to the dense elimination.
type metrics struct {
	mx sync.Mutex

	count   uint64
	minRows uint32
	maxRows uint32
	avgRows uint32
	minCols uint32
	maxCols uint32
	avgCols uint32
	minSize uint32
	maxSize uint32
	avgSize uint32
}

func newMetrics() *metrics {
	return &metrics{}
}

func (m *metrics) store(rows, cols uint32) {
	size := rows * cols

	m.mx.Lock()
	defer m.mx.Unlock()

	m.count++
	if m.count == 1 {
		m.minRows, m.maxRows, m.avgRows = rows, rows, rows
		m.minCols, m.maxCols, m.avgCols = cols, cols, cols
		m.minSize, m.maxSize, m.avgSize = size, size, size
		return
	}

	if m.minRows > rows {
		m.minRows = rows
	}
	if m.maxRows < rows {
		m.maxRows = rows
	}
	m.avgRows = runningAvg(m.avgRows, rows, m.count)

	if m.minCols > cols {
		m.minCols = cols
	}
	if m.maxCols < cols {
		m.maxCols = cols
	}
	m.avgCols = runningAvg(m.avgCols, cols, m.count)

	if m.minSize > size {
		m.minSize = size
	}
	if m.maxSize < size {
		m.maxSize = size
	}
	m.avgSize = runningAvg(m.avgSize, size, m.count)
}

func runningAvg(avg, v uint32, n uint64) uint32 {
	return uint32((uint64(avg)*(n-1) + uint64(v)) / n)
}

func (m *metrics) String() string {
	m.mx.Lock()
	defer m.mx.Unlock()

	return fmt.Sprintf(
		"\n--- Solved ---\n%d\n--- Rows ---\nmin=%d max=%d avg=%d\n--- Cols ---\nmin=%d max=%d avg=%d\n--- Size ---\nmin=%d max=%d avg=%d\n",
		m.count,
		m.minRows,
		m.maxRows,
		m.avgRows,
		m.minCols,
		m.maxCols,
		m.avgCols,
		m.minSize,
		m.maxSize,
		m.avgSize,
	)
}

// GetMetrics returns statistics of dense eliminations done by the process.
func GetMetrics() string {
	return defaultMetrics.String()
}
