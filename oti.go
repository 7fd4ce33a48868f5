package raptorq

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxTransferLength is the largest object size RaptorQ can carry.
	MaxTransferLength = 946270874880
	// MaxSourceBlocks is the largest number of source blocks per object.
	MaxSourceBlocks = 256

	// DefaultAlignment is the symbol alignment Al used by WithDefaults.
	DefaultAlignment = 8
	// DefaultSubSymbolSize is the lower bound of a sub-symbol size in units of Al.
	DefaultSubSymbolSize = 8
	// DefaultMaxMemory is the target decoder working memory per sub-block.
	DefaultMaxMemory = 10 * 1024 * 1024
)

// OTISize is the length of a serialized ObjectTransmissionInformation.
const OTISize = 12

// ObjectTransmissionInformation holds everything a receiver must know
// to lay out the object exactly like the sender.
type ObjectTransmissionInformation struct {
	TransferLength uint64 // F
	SymbolSize     uint16 // T
	SourceBlocks   uint16 // Z
	SubBlocks      uint16 // N
	Alignment      uint8  // Al
}

// WithDefaults derives transmission parameters of an object of
// transferLength bytes carried in packets of at most mtu payload bytes.
func WithDefaults(transferLength uint64, mtu uint16) (ObjectTransmissionInformation, error) {
	if transferLength == 0 {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: transfer length cannot be zero", ErrInvalidParameters)
	}
	if transferLength > MaxTransferLength {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: transfer length %d is more than %d", ErrInvalidParameters, transferLength, uint64(MaxTransferLength))
	}
	if mtu < DefaultAlignment {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: mtu %d cannot hold a symbol", ErrInvalidParameters, mtu)
	}

	al := uint64(DefaultAlignment)
	t := uint64(mtu) - uint64(mtu)%al
	kt := (transferLength + t - 1) / t

	nMax := t / (DefaultSubSymbolSize * al)
	if nMax == 0 {
		nMax = 1
	}

	kl := func(n uint64) uint64 {
		x := (t + al*n - 1) / (al * n)
		limit := DefaultMaxMemory / (al * x)
		for i := len(systematicIndices) - 1; i >= 0; i-- {
			if uint64(systematicIndices[i].KPrime) <= limit {
				return uint64(systematicIndices[i].KPrime)
			}
		}
		return uint64(systematicIndices[0].KPrime)
	}

	z := (kt + kl(nMax) - 1) / kl(nMax)
	if z > MaxSourceBlocks {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: %d source blocks needed, mtu %d is too small", ErrInvalidParameters, z, mtu)
	}

	n := uint64(1)
	for i := uint64(1); i <= nMax; i++ {
		n = i
		if (kt+z-1)/z <= kl(i) {
			break
		}
	}

	return ObjectTransmissionInformation{
		TransferLength: transferLength,
		SymbolSize:     uint16(t),
		SourceBlocks:   uint16(z),
		SubBlocks:      uint16(n),
		Alignment:      DefaultAlignment,
	}, nil
}

func (o ObjectTransmissionInformation) Validate() error {
	switch {
	case o.TransferLength == 0 || o.TransferLength > MaxTransferLength:
		return fmt.Errorf("%w: transfer length %d is out of range", ErrInvalidParameters, o.TransferLength)
	case o.Alignment == 0 || o.SymbolSize == 0 || o.SymbolSize%uint16(o.Alignment) != 0:
		return fmt.Errorf("%w: symbol size %d is not aligned to %d", ErrInvalidParameters, o.SymbolSize, o.Alignment)
	case o.SourceBlocks == 0 || o.SourceBlocks > MaxSourceBlocks:
		return fmt.Errorf("%w: %d source blocks", ErrInvalidParameters, o.SourceBlocks)
	case o.SubBlocks == 0 || o.SubBlocks > o.SymbolSize/uint16(o.Alignment):
		return fmt.Errorf("%w: %d sub-blocks for symbol size %d", ErrInvalidParameters, o.SubBlocks, o.SymbolSize)
	}

	t := uint64(o.SymbolSize)
	kt := (o.TransferLength + t - 1) / t
	if kt < uint64(o.SourceBlocks) {
		return fmt.Errorf("%w: %d source blocks for %d symbols", ErrInvalidParameters, o.SourceBlocks, kt)
	}
	if kl, _, _, _ := Partition(kt, uint64(o.SourceBlocks)); kl > MaxSourceSymbols {
		return fmt.Errorf("%w: %d symbols per source block is more than %d", ErrInvalidParameters, kl, MaxSourceSymbols)
	}
	return nil
}

// Serialize encodes the common and scheme-specific FEC OTI (RFC 6330 3.3.2, 3.3.3).
func (o ObjectTransmissionInformation) Serialize() []byte {
	buf := make([]byte, OTISize)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], o.TransferLength)
	copy(buf[0:5], tmp[3:])
	// buf[5] is reserved
	binary.BigEndian.PutUint16(buf[6:8], o.SymbolSize)
	buf[8] = uint8(o.SourceBlocks) // 256 wraps to 0
	binary.BigEndian.PutUint16(buf[9:11], o.SubBlocks)
	buf[11] = o.Alignment
	return buf
}

func ParseObjectTransmissionInformation(data []byte) (ObjectTransmissionInformation, error) {
	if len(data) < OTISize {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: oti data too short", ErrInvalidParameters)
	}

	var tmp [8]byte
	copy(tmp[3:], data[0:5])

	o := ObjectTransmissionInformation{
		TransferLength: binary.BigEndian.Uint64(tmp[:]),
		SymbolSize:     binary.BigEndian.Uint16(data[6:8]),
		SourceBlocks:   uint16(data[8]),
		SubBlocks:      binary.BigEndian.Uint16(data[9:11]),
		Alignment:      data[11],
	}
	if o.SourceBlocks == 0 {
		o.SourceBlocks = MaxSourceBlocks
	}

	if err := o.Validate(); err != nil {
		return ObjectTransmissionInformation{}, err
	}
	return o, nil
}
