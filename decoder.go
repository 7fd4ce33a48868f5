package raptorq

import (
	"fmt"
	"math"
)

// maxDecodeLength is the largest object the decoder can hold in memory,
// lengths over 2 GiB do not fit int on 32-bit platforms.
var maxDecodeLength uint64 = math.MaxInt

// Decoder reconstructs an object from encoding packets of all its source
// blocks. It is not safe for concurrent use.
type Decoder struct {
	oti    ObjectTransmissionInformation
	blocks []*SourceBlockDecoder
	solved int
	closed bool

	data []byte
}

// NewDecoder prepares to receive an object of transferLength bytes sent
// by an encoder created with the same mtu.
func NewDecoder(transferLength uint64, mtu uint16) (*Decoder, error) {
	return NewDecoderWithConfig(DefaultConfig, transferLength, mtu)
}

func NewDecoderWithConfig(cfg Config, transferLength uint64, mtu uint16) (*Decoder, error) {
	oti, err := WithDefaults(transferLength, mtu)
	if err != nil {
		return nil, err
	}
	return NewDecoderFromOTI(cfg, oti)
}

func NewDecoderFromOTI(cfg Config, oti ObjectTransmissionInformation) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := oti.Validate(); err != nil {
		return nil, err
	}
	if oti.TransferLength > maxDecodeLength {
		return nil, fmt.Errorf("%w: transfer length %d does not fit memory of this platform", ErrInvalidParameters, oti.TransferLength)
	}

	layouts := oti.blocks()
	subSizes := oti.subSymbolSizes()

	blocks := make([]*SourceBlockDecoder, len(layouts))
	for i, l := range layouts {
		blk, err := newSourceBlockDecoder(l.SBN, l.K, l.Length, subSizes, cfg.RankTrackingLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to init block %d: %w", l.SBN, err)
		}
		blocks[i] = blk
	}

	return &Decoder{
		oti:    oti,
		blocks: blocks,
	}, nil
}

func (d *Decoder) OTI() ObjectTransmissionInformation {
	return d.oti
}

func (d *Decoder) BlockState(sbn uint8) (BlockState, error) {
	if int(sbn) >= len(d.blocks) {
		return 0, fmt.Errorf("%w: no block %d", ErrInvalidParameters, sbn)
	}
	return d.blocks[sbn].State(), nil
}

func (d *Decoder) IsComplete() bool {
	return d.blocks != nil && d.solved == len(d.blocks)
}

// AddPacket routes the packet to its block, returns true when the whole
// object is recovered.
func (d *Decoder) AddPacket(p *EncodingPacket) (bool, error) {
	if d.closed {
		return false, fmt.Errorf("%w: decoder is closed", ErrInvalidState)
	}
	if int(p.SourceBlockNumber) >= len(d.blocks) {
		return false, fmt.Errorf("%w: source block %d, object has %d", ErrMalformedPacket, p.SourceBlockNumber, len(d.blocks))
	}
	if len(p.Data) != int(d.oti.SymbolSize) {
		return false, fmt.Errorf("%w: payload size %d, should be %d", ErrMalformedPacket, len(p.Data), d.oti.SymbolSize)
	}

	blk := d.blocks[p.SourceBlockNumber]
	if blk.State() == BlockSolved {
		return d.IsComplete(), nil
	}

	solved, err := blk.AddSymbol(p.EncodingSymbolID, p.Data)
	if err != nil {
		return false, err
	}

	if solved {
		d.solved++
		if d.IsComplete() {
			d.assemble()
			Logger("[RAPTORQ] object of", d.oti.TransferLength, "bytes recovered")
		}
	}
	return d.IsComplete(), nil
}

// Decode parses and adds a serialized packet. When the object is
// recovered it is copied into out and its length is returned, otherwise 0.
func (d *Decoder) Decode(packet []byte, out []byte) (int, error) {
	p, err := ParseEncodingPacket(packet)
	if err != nil {
		return 0, err
	}

	complete, err := d.AddPacket(p)
	if err != nil || !complete {
		return 0, err
	}

	if out != nil {
		if uint64(len(out)) < d.oti.TransferLength {
			return 0, fmt.Errorf("%w: object has %d bytes, buffer has %d", ErrBufferTooSmall, d.oti.TransferLength, len(out))
		}
		copy(out, d.data)
	}
	return int(d.oti.TransferLength), nil
}

func (d *Decoder) assemble() {
	d.data = make([]byte, d.oti.TransferLength)

	layouts := d.oti.blocks()
	for i, blk := range d.blocks {
		copy(d.data[layouts[i].Offset:], blk.Data())
		blk.data = nil
	}
}

// Data returns the recovered object, nil until complete.
func (d *Decoder) Data() []byte {
	return d.data
}

// Close releases decoder state, the decoder cannot be used after.
func (d *Decoder) Close() {
	d.blocks = nil
	d.data = nil
	d.closed = true
}
