package raptorq

// Partition splits i items into j parts as equal as possible (RFC 6330 4.4.1.2):
// jl parts of il items and js parts of is items.
func Partition(i, j uint64) (il, is, jl, js uint64) {
	if j == 0 {
		return 0, 0, 0, 0
	}

	il = (i + j - 1) / j
	is = i / j
	jl = i - is*j
	js = j - jl
	return
}

// blockLayout is a position of a source block inside the object.
type blockLayout struct {
	SBN    uint8
	K      uint32
	Offset uint64
	// Length is a number of object bytes in the block, the rest up to K*T is padding.
	Length uint64
}

func (o ObjectTransmissionInformation) blocks() []blockLayout {
	t := uint64(o.SymbolSize)
	kt := (o.TransferLength + t - 1) / t
	kl, ks, zl, _ := Partition(kt, uint64(o.SourceBlocks))

	res := make([]blockLayout, o.SourceBlocks)
	offset := uint64(0)
	for i := range res {
		k := ks
		if uint64(i) < zl {
			k = kl
		}

		length := k * t
		if offset+length > o.TransferLength {
			length = o.TransferLength - offset
		}

		res[i] = blockLayout{
			SBN:    uint8(i),
			K:      uint32(k),
			Offset: offset,
			Length: length,
		}
		offset += length
	}
	return res
}

// subSymbolSizes returns sizes in bytes of the sub-symbols every symbol is built from.
func (o ObjectTransmissionInformation) subSymbolSizes() []uint32 {
	al := uint64(o.Alignment)
	tl, ts, nl, ns := Partition(uint64(o.SymbolSize)/al, uint64(o.SubBlocks))

	res := make([]uint32, 0, nl+ns)
	for i := uint64(0); i < nl; i++ {
		res = append(res, uint32(tl*al))
	}
	for i := uint64(0); i < ns; i++ {
		res = append(res, uint32(ts*al))
	}
	return res
}
