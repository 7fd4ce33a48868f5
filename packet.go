package raptorq

import (
	"encoding/binary"
	"fmt"
)

// PayloadIDSize is the length of a serialized PayloadID.
const PayloadIDSize = 4

// PayloadID is the FEC Payload ID: 8 bit source block number and 24 bit
// encoding symbol id, big-endian.
type PayloadID struct {
	SourceBlockNumber uint8
	EncodingSymbolID  uint32
}

func (p PayloadID) Serialize() []byte {
	buf := make([]byte, PayloadIDSize)
	p.put(buf)
	return buf
}

func (p PayloadID) put(buf []byte) {
	binary.BigEndian.PutUint32(buf, uint32(p.SourceBlockNumber)<<24|p.EncodingSymbolID&MaxESI)
}

func ParsePayloadID(data []byte) (PayloadID, error) {
	if len(data) < PayloadIDSize {
		return PayloadID{}, fmt.Errorf("%w: payload id too short", ErrMalformedPacket)
	}

	v := binary.BigEndian.Uint32(data)
	return PayloadID{
		SourceBlockNumber: uint8(v >> 24),
		EncodingSymbolID:  v & MaxESI,
	}, nil
}

type EncodingPacket struct {
	PayloadID
	Data []byte
}

// Len returns the serialized size of the packet.
func (p *EncodingPacket) Len() int {
	return PayloadIDSize + len(p.Data)
}

func (p *EncodingPacket) Serialize() ([]byte, error) {
	buf := make([]byte, p.Len())
	if _, err := p.SerializeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SerializeTo writes the packet into out and returns the number of bytes written.
func (p *EncodingPacket) SerializeTo(out []byte) (int, error) {
	if p.EncodingSymbolID > MaxESI {
		return 0, fmt.Errorf("%w: esi %d does not fit payload id", ErrInvalidParameters, p.EncodingSymbolID)
	}
	if len(out) < p.Len() {
		return 0, fmt.Errorf("%w: packet needs %d bytes, buffer has %d", ErrBufferTooSmall, p.Len(), len(out))
	}

	p.put(out)
	copy(out[PayloadIDSize:], p.Data)
	return p.Len(), nil
}

// ParseEncodingPacket parses a packet, payload references data.
func ParseEncodingPacket(data []byte) (*EncodingPacket, error) {
	id, err := ParsePayloadID(data)
	if err != nil {
		return nil, err
	}

	return &EncodingPacket{
		PayloadID: id,
		Data:      data[PayloadIDSize:],
	}, nil
}
