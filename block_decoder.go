package raptorq

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andreypfau/raptorq/discmath"
)

type BlockState int

const (
	BlockCollecting BlockState = iota
	BlockSolving
	BlockSolved
)

func (s BlockState) String() string {
	switch s {
	case BlockCollecting:
		return "collecting"
	case BlockSolving:
		return "solving"
	case BlockSolved:
		return "solved"
	}
	return fmt.Sprintf("BlockState(%d)", int(s))
}

// SourceBlockDecoder collects encoding symbols of one source block and
// recovers its source symbols once enough independent symbols are known.
type SourceBlockDecoder struct {
	sbn      uint8
	symbolSz uint32
	subSizes []uint32
	length   uint64
	params   *blockParams
	state    BlockState

	received  map[uint32][]byte
	sourceNum uint32
	// rank of LDPC, padding and received rows, nil when not tracked
	rank *discmath.RankGF2

	data []byte
}

// NewSourceBlockDecoder creates a decoder of a block of blockLength bytes
// split into symbols of symbolSize bytes.
func NewSourceBlockDecoder(sbn uint8, blockLength uint64, symbolSize uint16) (*SourceBlockDecoder, error) {
	if blockLength == 0 || symbolSize == 0 {
		return nil, fmt.Errorf("%w: empty block or zero symbol size", ErrInvalidParameters)
	}

	k := (blockLength + uint64(symbolSize) - 1) / uint64(symbolSize)
	if k > MaxSourceSymbols {
		return nil, fmt.Errorf("%w: %d source symbols is more than %d", ErrInvalidParameters, k, MaxSourceSymbols)
	}
	return newSourceBlockDecoder(sbn, uint32(k), blockLength, []uint32{uint32(symbolSize)}, DefaultConfig.RankTrackingLimit)
}

func newSourceBlockDecoder(sbn uint8, k uint32, length uint64, subSizes []uint32, rankLimit uint32) (*SourceBlockDecoder, error) {
	params, err := calcParams(k)
	if err != nil {
		return nil, fmt.Errorf("failed to calc params: %w", err)
	}

	symSz := uint32(0)
	for _, s := range subSizes {
		symSz += s
	}

	d := &SourceBlockDecoder{
		sbn:      sbn,
		symbolSz: symSz,
		subSizes: subSizes,
		length:   length,
		params:   params,
		state:    BlockCollecting,
		received: make(map[uint32][]byte),
	}

	if params.L <= rankLimit {
		d.rank = discmath.NewRankGF2(params.L)

		ldpc := make([]discmath.BitRow, params.S)
		for i := range ldpc {
			ldpc[i] = discmath.NewBitRow(params.L)
		}
		params.eachLDPC(func(row, col uint32) {
			ldpc[row].Set(col)
		})
		for _, row := range ldpc {
			d.rank.Insert(row)
		}

		for isi := params.K; isi < params.KPrime; isi++ {
			d.rank.Insert(params.encodingRow(isi))
		}
	}

	return d, nil
}

func (d *SourceBlockDecoder) SourceBlockNumber() uint8 {
	return d.sbn
}

func (d *SourceBlockDecoder) SourceSymbolsNum() uint32 {
	return d.params.K
}

func (d *SourceBlockDecoder) State() BlockState {
	return d.state
}

// ReceivedNum returns the number of distinct symbols received.
func (d *SourceBlockDecoder) ReceivedNum() int {
	return len(d.received)
}

// AddSymbol stores the symbol and tries to recover the block when the
// known rows can have full rank. Returns true when the block is solved.
// On error the decoder state stays unchanged.
func (d *SourceBlockDecoder) AddSymbol(esi uint32, data []byte) (bool, error) {
	if esi > MaxESI {
		return false, fmt.Errorf("%w: esi %d is out of range", ErrMalformedPacket, esi)
	}
	if uint32(len(data)) != d.symbolSz {
		return false, fmt.Errorf("%w: incorrect symbol size %d, should be %d", ErrMalformedPacket, len(data), d.symbolSz)
	}

	if d.state == BlockSolved {
		return true, nil
	}
	if _, ok := d.received[esi]; ok {
		return false, nil
	}

	var row discmath.BitRow
	grows := false
	if d.rank != nil {
		row = d.params.encodingRow(d.params.toISI(esi))
		grows = !d.rank.Contains(row)
	}

	d.received[esi] = append([]byte{}, data...)
	if esi < d.params.K {
		d.sourceNum++
	}

	if d.canSolve(grows) {
		if _, err := d.Decode(); err != nil {
			delete(d.received, esi)
			if esi < d.params.K {
				d.sourceNum--
			}
			return false, err
		}
	}

	if grows && d.rank != nil {
		d.rank.Insert(row)
	}
	return d.state == BlockSolved, nil
}

func (d *SourceBlockDecoder) canSolve(grows bool) bool {
	if uint32(len(d.received)) < d.params.K {
		return false
	}
	if d.sourceNum == d.params.K || d.rank == nil {
		return true
	}

	rank := d.rank.Rank()
	if grows {
		rank++
	}
	return rank >= d.params.L-d.params.H
}

// Decode tries to recover the block from the symbols received so far.
// Not having enough independent symbols is not an error, false is returned.
func (d *SourceBlockDecoder) Decode() (bool, error) {
	if d.state == BlockSolved {
		return true, nil
	}

	p := d.params
	if uint32(len(d.received)) < p.K {
		return false, nil
	}

	symbols := make([][]byte, p.K)
	if d.sourceNum < p.K {
		d.state = BlockSolving

		intermediate, err := d.solve()
		if err != nil {
			d.state = BlockCollecting
			if errors.Is(err, ErrInsufficientSymbols) {
				Logger("[RAPTORQ] block", d.sbn, "is not solvable yet with", len(d.received), "symbols of", p.K)
				return false, nil
			}
			return false, fmt.Errorf("failed to solve block %d: %w", d.sbn, err)
		}

		for i := uint32(0); i < p.K; i++ {
			if sym, ok := d.received[i]; ok {
				symbols[i] = sym
				continue
			}
			symbols[i] = p.genSymbol(intermediate, i)
		}
	} else {
		for i := uint32(0); i < p.K; i++ {
			symbols[i] = d.received[i]
		}
	}

	d.data = make([]byte, d.length)
	joinSymbols(d.data, symbols, d.subSizes)

	d.state = BlockSolved
	d.received = nil
	d.rank = nil

	Logger("[RAPTORQ] block", d.sbn, "solved")
	return true, nil
}

func (d *SourceBlockDecoder) solve() (*discmath.MatrixGF256, error) {
	p := d.params

	esis := make([]uint32, 0, len(d.received))
	for esi := range d.received {
		esis = append(esis, esi)
	}
	sort.Slice(esis, func(i, j int) bool {
		return esis[i] < esis[j]
	})

	isis := make([]uint32, 0, len(esis)+int(p.KPrime-p.K))
	symbols := make([][]byte, 0, cap(isis))
	for _, esi := range esis {
		isis = append(isis, p.toISI(esi))
		symbols = append(symbols, d.received[esi])
	}

	// padding symbols are known zeroes
	zero := make([]byte, d.symbolSz)
	for isi := p.K; isi < p.KPrime; isi++ {
		isis = append(isis, isi)
		symbols = append(symbols, zero)
	}

	return buildMatrix(p, isis).solve(symbols)
}

// Data returns the recovered block bytes, nil until solved.
func (d *SourceBlockDecoder) Data() []byte {
	return d.data
}
