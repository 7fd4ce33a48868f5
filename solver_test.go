package raptorq

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"runtime"
	"testing"
)

func Test_Encode(t *testing.T) {
	str := "hello world bro! keke meme 881"

	enc, err := NewSourceBlockEncoder(0, []byte(str), 20)
	if err != nil {
		t.Fatal(err)
	}

	should, _ := hex.DecodeString("05e6ddeb1f820e0a0f318b23128d889623663e66")
	sx := enc.Symbol(68238283)

	if !bytes.Equal(sx, should) {
		t.Fatal("encoded not eq, got", hex.EncodeToString(sx))
	}
}

func Test_EncodeSystematic(t *testing.T) {
	data := make([]byte, 1000)
	rand.New(rand.NewSource(3)).Read(data)

	enc, err := NewSourceBlockEncoder(0, data, 64)
	if err != nil {
		t.Fatal(err)
	}

	if enc.SourceSymbolsNum() != 16 {
		t.Fatal("wrong K", enc.SourceSymbolsNum())
	}

	for i := uint32(0); i < enc.SourceSymbolsNum(); i++ {
		from := i * 64
		to := from + 64
		if to > uint32(len(data)) {
			to = uint32(len(data))
		}
		if !bytes.Equal(enc.Symbol(i)[:to-from], data[from:to]) {
			t.Fatal("source symbol differs", i)
		}
	}

	// intermediate symbols regenerate source symbols too
	for i := uint32(0); i < enc.SourceSymbolsNum(); i++ {
		if !bytes.Equal(enc.params.genSymbol(enc.intermediate, i), enc.Symbol(i)) {
			t.Fatal("regenerated source symbol differs", i)
		}
	}
}

func Test_EncodeDecode(t *testing.T) {
	str := []byte("hello world bro! keke meme 881")

	enc, err := NewSourceBlockEncoder(0, str, 20)
	if err != nil {
		t.Fatal(err)
	}

	dec, err := NewSourceBlockDecoder(0, uint64(len(str)), 20)
	if err != nil {
		t.Fatal(err)
	}

	for i := uint32(0); i < 2; i++ {
		_, err := dec.AddSymbol(i+10000, enc.Symbol(i+10000))
		if err != nil {
			t.Fatal("add symbol err", err)
		}
	}

	ok, err := dec.Decode()
	if err != nil {
		t.Fatal("decode err", err)
	}
	if !ok {
		t.Fatal("not decoded")
	}

	if !bytes.Equal(dec.Data(), str) {
		t.Fatal("initial data not eq decrypted")
	}
}

func Test_EncodeDecodeFuzz(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))

	for symSz := uint16(10); symSz <= 100; symSz += 10 {
		str := make([]byte, 4096)
		rnd.Read(str)

		enc, err := NewSourceBlockEncoder(0, str, symSz)
		if err != nil {
			t.Fatal(err)
		}

		dec, err := NewSourceBlockDecoder(0, uint64(len(str)), symSz)
		if err != nil {
			t.Fatal(err)
		}

		_, err = dec.AddSymbol(2, enc.Symbol(2))
		if err != nil {
			t.Fatal("add 2 symbol err", err)
		}

		for i := uint32(0); i < enc.SourceSymbolsNum(); i++ {
			_, err := dec.AddSymbol(i+10000, enc.Symbol(i+10000))
			if err != nil {
				t.Fatal("add symbol err", err)
			}
		}

		ok, err := dec.Decode()
		if err != nil {
			t.Fatal("decode err", err)
		}
		if !ok {
			t.Fatal("not decoded, symbol size", symSz)
		}

		if !bytes.Equal(dec.Data(), str) {
			t.Fatal("initial data not eq decrypted")
		}
	}
}

func Test_DecodeNotEnough(t *testing.T) {
	data := make([]byte, 640)
	rand.New(rand.NewSource(5)).Read(data)

	enc, err := NewSourceBlockEncoder(0, data, 64)
	if err != nil {
		t.Fatal(err)
	}

	dec, err := NewSourceBlockDecoder(0, uint64(len(data)), 64)
	if err != nil {
		t.Fatal(err)
	}

	for i := uint32(0); i < enc.SourceSymbolsNum()-1; i++ {
		solved, err := dec.AddSymbol(i*3+1, enc.Symbol(i*3+1))
		if err != nil {
			t.Fatal(err)
		}
		if solved {
			t.Fatal("solved with less than K symbols")
		}
	}

	ok, err := dec.Decode()
	if err != nil || ok {
		t.Fatal("decode should need more symbols", ok, err)
	}
	if dec.State() != BlockCollecting || dec.Data() != nil {
		t.Fatal("block should still collect")
	}
}

func Test_DecodeRepairOnlyRank(t *testing.T) {
	data := make([]byte, 640)
	rand.New(rand.NewSource(6)).Read(data)

	enc, err := NewSourceBlockEncoder(0, data, 64)
	if err != nil {
		t.Fatal(err)
	}

	p := enc.params
	dec, err := NewSourceBlockDecoder(0, uint64(len(data)), 64)
	if err != nil {
		t.Fatal(err)
	}

	// repair symbols only, rank never decreases and never exceeds L
	for esi := enc.SourceSymbolsNum(); esi < 200; esi++ {
		before := dec.rank.Rank()
		if _, err = dec.AddSymbol(esi, enc.Symbol(esi)); err != nil {
			t.Fatal(err)
		}
		if dec.State() == BlockSolved {
			break
		}
		if dec.rank.Rank() < before || dec.rank.Rank() > p.L {
			t.Fatal("rank went wrong", before, dec.rank.Rank())
		}
	}

	if dec.State() != BlockSolved {
		t.Fatal("block not solved")
	}
	if !bytes.Equal(dec.Data(), data) {
		t.Fatal("data differs")
	}
}

func Test_BuildMatrixOrdering(t *testing.T) {
	for _, k := range []uint32{10, 101, 1000} {
		p, err := calcParams(k)
		if err != nil {
			t.Fatal(err)
		}

		isis := make([]uint32, p.KPrime)
		for i := range isis {
			isis[i] = uint32(i)
		}
		m := buildMatrix(p, isis)

		seen := make([]bool, p.L)
		for _, pos := range m.colPos {
			if pos >= p.L || seen[pos] {
				t.Fatal("column positions are not a permutation, K'", p.KPrime)
			}
			seen[pos] = true
		}
		if uint32(len(m.rowOrder)) != m.a.RowsNum() {
			t.Fatal("wrong row order size", len(m.rowOrder))
		}

		// peeled rows are lower triangular with ones on the diagonal
		for row := uint32(0); row < m.side; row++ {
			diag := false
			for _, col := range m.a.GetCols(row) {
				if col == row {
					diag = true
				}
				if col > row && col < m.side {
					t.Fatalf("K' %d: row %d has column %d above the diagonal", p.KPrime, row, col)
				}
			}
			if !diag {
				t.Fatalf("K' %d: row %d has no diagonal", p.KPrime, row)
			}
		}

		// PI columns stay inactive in their order
		for i := p.W; i < p.L; i++ {
			if m.colPos[i] != p.L-p.P+(i-p.W) {
				t.Fatalf("K' %d: PI column %d moved to %d", p.KPrime, i, m.colPos[i])
			}
		}
	}
}

func Test_EncodeDecodeLargeBlock(t *testing.T) {
	if testing.Short() {
		t.Skip("large block")
	}

	const k, symSz, lost = 20000, 8, 50

	data := make([]byte, k*symSz)
	rand.New(rand.NewSource(20000)).Read(data)

	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	enc, err := NewSourceBlockEncoder(0, data, symSz)
	if err != nil {
		t.Fatal(err)
	}
	if enc.SourceSymbolsNum() != k {
		t.Fatal("wrong K", enc.SourceSymbolsNum())
	}

	dec, err := NewSourceBlockDecoder(0, uint64(len(data)), symSz)
	if err != nil {
		t.Fatal(err)
	}

	repair, err := enc.RepairPackets(0, lost+10)
	if err != nil {
		t.Fatal(err)
	}
	for _, pkt := range repair {
		if _, err = dec.AddSymbol(pkt.EncodingSymbolID, pkt.Data); err != nil {
			t.Fatal(err)
		}
	}

	solved := false
	for esi := uint32(lost); esi < k && !solved; esi++ {
		if solved, err = dec.AddSymbol(esi, enc.Symbol(esi)); err != nil {
			t.Fatal(err)
		}
	}
	if !solved {
		t.Fatal("block not solved")
	}
	if !bytes.Equal(dec.Data(), data) {
		t.Fatal("data differs")
	}

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	// one dense L x L byte matrix alone is above 400 MiB here
	const budget = 128 << 20
	if allocated := after.TotalAlloc - before.TotalAlloc; allocated > budget {
		t.Fatalf("allocated %d MiB, budget is %d MiB", allocated>>20, budget>>20)
	}
}

func Benchmark_EncodeDecode(b *testing.B) {
	str := make([]byte, 4096)
	rand.Read(str)

	for n := 0; n < b.N; n++ {
		enc, err := NewSourceBlockEncoder(0, str, 768)
		if err != nil {
			b.Fatal(err)
		}

		dec, err := NewSourceBlockDecoder(0, uint64(len(str)), 768)
		if err != nil {
			b.Fatal(err)
		}

		for i := uint32(0); i < enc.SourceSymbolsNum()+2; i++ {
			if _, err = dec.AddSymbol(i+10000, enc.Symbol(i+10000)); err != nil {
				b.Fatal(err)
			}
		}

		if ok, err := dec.Decode(); err != nil || !ok {
			b.Fatal("not decoded", err)
		}
	}
}
