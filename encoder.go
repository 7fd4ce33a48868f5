package raptorq

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

type EncoderState int

const (
	EncoderReady EncoderState = iota
	EncoderEmitting
	EncoderClosed
)

func (s EncoderState) String() string {
	switch s {
	case EncoderReady:
		return "ready"
	case EncoderEmitting:
		return "emitting"
	case EncoderClosed:
		return "closed"
	}
	return fmt.Sprintf("EncoderState(%d)", int(s))
}

// Encoder splits an object into source blocks and emits their encoding
// packets. It is not safe for concurrent use.
type Encoder struct {
	oti    ObjectTransmissionInformation
	cfg    Config
	blocks []*SourceBlockEncoder
	state  EncoderState

	queue []*EncodingPacket
	next  int
}

// NewEncoder prepares data for transmission in packets of at most mtu bytes of payload.
func NewEncoder(data []byte, mtu uint16) (*Encoder, error) {
	return NewEncoderWithConfig(DefaultConfig, data, mtu)
}

func NewEncoderWithConfig(cfg Config, data []byte, mtu uint16) (*Encoder, error) {
	oti, err := WithDefaults(uint64(len(data)), mtu)
	if err != nil {
		return nil, err
	}
	return NewEncoderFromOTI(cfg, data, oti)
}

// NewEncoderFromOTI encodes data with explicitly given transmission parameters.
func NewEncoderFromOTI(cfg Config, data []byte, oti ObjectTransmissionInformation) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := oti.Validate(); err != nil {
		return nil, err
	}
	if oti.TransferLength != uint64(len(data)) {
		return nil, fmt.Errorf("%w: transfer length %d, data has %d bytes", ErrInvalidParameters, oti.TransferLength, len(data))
	}

	cache, err := sharedMatrices(cfg.MatrixCacheBytes)
	if err != nil {
		return nil, err
	}

	layouts := oti.blocks()
	subSizes := oti.subSymbolSizes()
	blocks := make([]*SourceBlockEncoder, len(layouts))

	var g errgroup.Group
	g.SetLimit(cfg.workers())
	for i, l := range layouts {
		i, l := i, l
		g.Go(func() error {
			blk, err := newSourceBlockEncoder(cache, l.SBN, data[l.Offset:l.Offset+l.Length], l.K, subSizes)
			if err != nil {
				return fmt.Errorf("failed to encode block %d: %w", l.SBN, err)
			}
			blocks[i] = blk
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	Logger("[RAPTORQ] encoder created, blocks:", len(blocks), "symbol size:", oti.SymbolSize, "sub-blocks:", oti.SubBlocks)

	return &Encoder{
		oti:    oti,
		cfg:    cfg,
		blocks: blocks,
		state:  EncoderReady,
	}, nil
}

func (e *Encoder) OTI() ObjectTransmissionInformation {
	return e.oti
}

func (e *Encoder) State() EncoderState {
	return e.state
}

// Blocks returns encoders of the source blocks.
func (e *Encoder) Blocks() []*SourceBlockEncoder {
	return e.blocks
}

// Packets returns source packets followed by repairPerBlock repair packets
// of every block, blocks in order. Encoder state is not changed.
func (e *Encoder) Packets(repairPerBlock uint32) ([]*EncodingPacket, error) {
	if e.state == EncoderClosed {
		return nil, fmt.Errorf("%w: encoder is closed", ErrInvalidState)
	}
	if repairPerBlock > e.cfg.MaxRepairPerBlock {
		return nil, fmt.Errorf("%w: %d repair symbols per block is more than %d", ErrInvalidParameters, repairPerBlock, e.cfg.MaxRepairPerBlock)
	}

	perBlock := make([][]*EncodingPacket, len(e.blocks))

	var g errgroup.Group
	g.SetLimit(e.cfg.workers())
	for i, blk := range e.blocks {
		i, blk := i, blk
		g.Go(func() error {
			repair, err := blk.RepairPackets(0, repairPerBlock)
			if err != nil {
				return fmt.Errorf("failed to generate repair symbols of block %d: %w", blk.SourceBlockNumber(), err)
			}
			perBlock[i] = append(blk.SourcePackets(), repair...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range perBlock {
		total += len(p)
	}

	res := make([]*EncodingPacket, 0, total)
	for _, p := range perBlock {
		res = append(res, p...)
	}
	return res, nil
}

// Encode queues all source symbols and repairPerBlock repair symbols of
// every block for NextPacket, returns the number of queued packets.
func (e *Encoder) Encode(repairPerBlock uint32) (int, error) {
	if e.state != EncoderReady {
		return 0, fmt.Errorf("%w: encode called in state %s", ErrInvalidState, e.state)
	}

	packets, err := e.Packets(repairPerBlock)
	if err != nil {
		return 0, err
	}

	e.queue = packets
	e.next = 0
	e.state = EncoderEmitting
	return len(packets), nil
}

// NextPacket serializes the next queued packet into out and returns its
// length, 0 means all packets were emitted.
func (e *Encoder) NextPacket(out []byte) (int, error) {
	if e.state != EncoderEmitting {
		return 0, fmt.Errorf("%w: next packet called in state %s", ErrInvalidState, e.state)
	}
	if e.next >= len(e.queue) {
		return 0, nil
	}

	n, err := e.queue[e.next].SerializeTo(out)
	if err != nil {
		return 0, err
	}
	e.queue[e.next] = nil
	e.next++
	return n, nil
}

// PacketSize returns the serialized size of every packet of the encoder.
func (e *Encoder) PacketSize() int {
	return PayloadIDSize + int(e.oti.SymbolSize)
}

// Close releases block state, the encoder cannot be used after.
func (e *Encoder) Close() {
	e.blocks = nil
	e.queue = nil
	e.state = EncoderClosed
}
