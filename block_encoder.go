package raptorq

import (
	"fmt"

	"github.com/andreypfau/raptorq/discmath"
)

// SourceBlockEncoder produces encoding symbols of one source block.
type SourceBlockEncoder struct {
	sbn          uint8
	symbolSz     uint32
	params       *blockParams
	symbols      [][]byte
	intermediate *discmath.MatrixGF256
}

// NewSourceBlockEncoder encodes data as a single source block of
// symbols of symbolSize bytes, the last symbol is zero padded.
func NewSourceBlockEncoder(sbn uint8, data []byte, symbolSize uint16) (*SourceBlockEncoder, error) {
	if len(data) == 0 || symbolSize == 0 {
		return nil, fmt.Errorf("%w: empty block or zero symbol size", ErrInvalidParameters)
	}

	cache, err := sharedMatrices(DefaultConfig.MatrixCacheBytes)
	if err != nil {
		return nil, err
	}

	k := (uint32(len(data)) + uint32(symbolSize) - 1) / uint32(symbolSize)
	return newSourceBlockEncoder(cache, sbn, data, k, []uint32{uint32(symbolSize)})
}

func newSourceBlockEncoder(cache *matrixCache, sbn uint8, data []byte, k uint32, subSizes []uint32) (*SourceBlockEncoder, error) {
	params, err := calcParams(k)
	if err != nil {
		return nil, fmt.Errorf("failed to calc params: %w", err)
	}

	symbols := splitToSymbols(data, k, subSizes)
	symSz := uint32(len(symbols[0]))

	m, err := cache.systematic(params)
	if err != nil {
		return nil, err
	}

	extended := make([][]byte, params.KPrime)
	copy(extended, symbols)
	if params.KPrime > k {
		padding := make([]byte, (params.KPrime-k)*symSz)
		for i := k; i < params.KPrime; i++ {
			off := (i - k) * symSz
			extended[i] = padding[off : off+symSz]
		}
	}

	intermediate, err := m.solve(extended)
	if err != nil {
		return nil, fmt.Errorf("failed to calc intermediate symbols: %w", err)
	}

	return &SourceBlockEncoder{
		sbn:          sbn,
		symbolSz:     symSz,
		params:       params,
		symbols:      symbols,
		intermediate: intermediate,
	}, nil
}

func (e *SourceBlockEncoder) SourceBlockNumber() uint8 {
	return e.sbn
}

// SourceSymbolsNum returns K, the number of source symbols.
func (e *SourceBlockEncoder) SourceSymbolsNum() uint32 {
	return e.params.K
}

func (e *SourceBlockEncoder) SymbolSize() uint32 {
	return e.symbolSz
}

// Symbol returns the encoding symbol with the given id, source symbols
// are returned as is and must not be modified.
func (e *SourceBlockEncoder) Symbol(esi uint32) []byte {
	if esi < e.params.K {
		return e.symbols[esi]
	}
	return e.params.genSymbol(e.intermediate, e.params.toISI(esi))
}

// IntermediateSymbols returns copies of the L intermediate symbols of the block.
func (e *SourceBlockEncoder) IntermediateSymbols() [][]byte {
	res := make([][]byte, e.intermediate.RowsNum())
	for i := range res {
		res[i] = append([]byte{}, e.intermediate.GetRow(uint32(i))...)
	}
	return res
}

func (e *SourceBlockEncoder) SourcePackets() []*EncodingPacket {
	res := make([]*EncodingPacket, 0, e.params.K)
	for esi := uint32(0); esi < e.params.K; esi++ {
		res = append(res, e.packet(esi))
	}
	return res
}

// RepairPackets returns count repair packets starting from repair symbol start,
// the first one has esi K+start.
func (e *SourceBlockEncoder) RepairPackets(start, count uint32) ([]*EncodingPacket, error) {
	first := uint64(e.params.K) + uint64(start)
	if first+uint64(count) > MaxESI+1 {
		return nil, fmt.Errorf("%w: repair symbols %d..%d do not fit esi range", ErrInvalidParameters, start, uint64(start)+uint64(count))
	}

	res := make([]*EncodingPacket, 0, count)
	for i := uint32(0); i < count; i++ {
		res = append(res, e.packet(uint32(first)+i))
	}
	return res, nil
}

func (e *SourceBlockEncoder) packet(esi uint32) *EncodingPacket {
	return &EncodingPacket{
		PayloadID: PayloadID{
			SourceBlockNumber: e.sbn,
			EncodingSymbolID:  esi,
		},
		Data: e.Symbol(esi),
	}
}
