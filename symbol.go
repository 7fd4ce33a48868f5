package raptorq

// splitToSymbols cuts zero padded block data into k symbols of size
// sum(subSizes). Sub-block j holds k consecutive sub-symbols of size
// subSizes[j], symbol i is built from the i-th sub-symbol of every sub-block.
func splitToSymbols(data []byte, k uint32, subSizes []uint32) [][]byte {
	symSz := uint32(0)
	for _, s := range subSizes {
		symSz += s
	}

	buf := make([]byte, k*symSz)
	symbols := make([][]byte, k)
	for i := uint32(0); i < k; i++ {
		symbols[i] = buf[i*symSz : (i+1)*symSz]
	}

	subOffset, symOffset := uint32(0), uint32(0)
	for _, sz := range subSizes {
		for i := uint32(0); i < k; i++ {
			from := subOffset + i*sz
			if from < uint32(len(data)) {
				to := from + sz
				if to > uint32(len(data)) {
					to = uint32(len(data))
				}
				copy(symbols[i][symOffset:], data[from:to])
			}
		}
		subOffset += k * sz
		symOffset += sz
	}
	return symbols
}

// joinSymbols is the inverse of splitToSymbols, it writes len(out) bytes
// of the block into out.
func joinSymbols(out []byte, symbols [][]byte, subSizes []uint32) {
	k := uint32(len(symbols))

	subOffset, symOffset := uint32(0), uint32(0)
	for _, sz := range subSizes {
		for i := uint32(0); i < k; i++ {
			from := subOffset + i*sz
			if from >= uint32(len(out)) {
				break
			}
			copy(out[from:], symbols[i][symOffset:symOffset+sz])
		}
		subOffset += k * sz
		symOffset += sz
	}
}
