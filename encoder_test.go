package raptorq

import (
	"bytes"
	"errors"
	"log"
	"math/rand"
	"testing"
)

func init() {
	Logger = log.Println
}

func collectPackets(t *testing.T, enc *Encoder, repair uint32) [][]byte {
	t.Helper()

	n, err := enc.Encode(repair)
	if err != nil {
		t.Fatal("encode err", err)
	}

	var res [][]byte
	buf := make([]byte, enc.PacketSize())
	for {
		sz, err := enc.NextPacket(buf)
		if err != nil {
			t.Fatal("next packet err", err)
		}
		if sz == 0 {
			break
		}
		res = append(res, append([]byte{}, buf[:sz]...))
	}

	if len(res) != n {
		t.Fatalf("emitted %d packets, queued %d", len(res), n)
	}
	return res
}

func TestEncoder_Queue(t *testing.T) {
	data := make([]byte, 10000)
	rand.New(rand.NewSource(1)).Read(data)

	enc, err := NewEncoder(data, 1400)
	if err != nil {
		t.Fatal(err)
	}

	oti := enc.OTI()
	if oti.SymbolSize != 1400 || oti.SourceBlocks != 1 || oti.SubBlocks != 1 || oti.Alignment != 8 {
		t.Fatalf("unexpected oti %+v", oti)
	}

	packets := collectPackets(t, enc, 5)
	if len(packets) != 8+5 {
		t.Fatal("wrong packets count", len(packets))
	}

	for i, pkt := range packets {
		if len(pkt) != PayloadIDSize+1400 {
			t.Fatal("wrong packet size", len(pkt))
		}

		p, err := ParseEncodingPacket(pkt)
		if err != nil {
			t.Fatal(err)
		}
		if p.SourceBlockNumber != 0 || p.EncodingSymbolID != uint32(i) {
			t.Fatalf("packet %d has id %+v", i, p.PayloadID)
		}

		if i < 7 && !bytes.Equal(p.Data, data[i*1400:(i+1)*1400]) {
			t.Fatal("systematic packet differs from source", i)
		}
	}

	last, _ := ParseEncodingPacket(packets[7])
	if !bytes.Equal(last.Data[:10000-7*1400], data[7*1400:]) || !bytes.Equal(last.Data[10000-7*1400:], make([]byte, 8*1400-10000)) {
		t.Fatal("last source symbol should be zero padded")
	}
}

func TestEncoder_Deterministic(t *testing.T) {
	data := make([]byte, 7777)
	rand.New(rand.NewSource(2)).Read(data)

	var streams [2][][]byte
	for i := range streams {
		enc, err := NewEncoder(data, 512)
		if err != nil {
			t.Fatal(err)
		}
		streams[i] = collectPackets(t, enc, 10)
	}

	if len(streams[0]) != len(streams[1]) {
		t.Fatal("streams have different length")
	}
	for i := range streams[0] {
		if !bytes.Equal(streams[0][i], streams[1][i]) {
			t.Fatal("streams differ at packet", i)
		}
	}
}

func TestEncoder_States(t *testing.T) {
	enc, err := NewEncoder(make([]byte, 3000), 1000)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, enc.PacketSize())
	if _, err = enc.NextPacket(buf); !errors.Is(err, ErrInvalidState) {
		t.Fatal("next packet before encode should fail, got", err)
	}

	if enc.State() != EncoderReady {
		t.Fatal("state should be ready, got", enc.State())
	}

	n, err := enc.Encode(1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || enc.State() != EncoderEmitting {
		t.Fatal("unexpected encode result", n, enc.State())
	}

	if _, err = enc.Encode(1); !errors.Is(err, ErrInvalidState) {
		t.Fatal("second encode should fail, got", err)
	}

	if _, err = enc.NextPacket(buf[:10]); !errors.Is(err, ErrBufferTooSmall) {
		t.Fatal("short buffer should fail, got", err)
	}

	// packet is not lost after a failed attempt
	sz, err := enc.NextPacket(buf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := ParseEncodingPacket(buf[:sz])
	if err != nil {
		t.Fatal(err)
	}
	if p.EncodingSymbolID != 0 {
		t.Fatal("first packet should have esi 0, got", p.EncodingSymbolID)
	}

	for i := 0; i < 3; i++ {
		if sz, err = enc.NextPacket(buf); err != nil || sz == 0 {
			t.Fatal("packet expected", sz, err)
		}
	}
	for i := 0; i < 2; i++ {
		if sz, err = enc.NextPacket(buf); err != nil || sz != 0 {
			t.Fatal("end of queue expected", sz, err)
		}
	}

	enc.Close()
	if enc.State() != EncoderClosed {
		t.Fatal("state should be closed")
	}
	if _, err = enc.NextPacket(buf); !errors.Is(err, ErrInvalidState) {
		t.Fatal("next packet after close should fail, got", err)
	}
	if _, err = enc.Packets(1); !errors.Is(err, ErrInvalidState) {
		t.Fatal("packets after close should fail, got", err)
	}
}

func TestEncoder_InvalidParameters(t *testing.T) {
	if _, err := NewEncoder(nil, 1400); !errors.Is(err, ErrInvalidParameters) {
		t.Fatal("empty data should fail, got", err)
	}
	if _, err := NewEncoder([]byte{1, 2, 3}, 7); !errors.Is(err, ErrInvalidParameters) {
		t.Fatal("tiny mtu should fail, got", err)
	}

	cfg := DefaultConfig
	cfg.MaxRepairPerBlock = 10

	enc, err := NewEncoderWithConfig(cfg, make([]byte, 100), 64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = enc.Encode(11); !errors.Is(err, ErrInvalidParameters) {
		t.Fatal("too many repair symbols should fail, got", err)
	}
	if enc.State() != EncoderReady {
		t.Fatal("failed encode should not change state")
	}
	if n, err := enc.Encode(10); err != nil || n != 12 {
		t.Fatal("encode within limit should pass", n, err)
	}

	oti, err := WithDefaults(100, 64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = NewEncoderFromOTI(DefaultConfig, make([]byte, 99), oti); !errors.Is(err, ErrInvalidParameters) {
		t.Fatal("data length mismatch should fail, got", err)
	}
}

func TestSourceBlockEncoder_RepairRange(t *testing.T) {
	enc, err := NewSourceBlockEncoder(3, make([]byte, 100), 10)
	if err != nil {
		t.Fatal(err)
	}

	inter := enc.IntermediateSymbols()
	if uint32(len(inter)) != enc.params.L {
		t.Fatal("wrong intermediate symbols num", len(inter))
	}
	esi := enc.SourceSymbolsNum() + 3
	sym := make([]byte, enc.SymbolSize())
	enc.params.eachColumn(enc.params.toISI(esi), func(col uint32) {
		for i := range sym {
			sym[i] ^= inter[col][i]
		}
	})
	if !bytes.Equal(sym, enc.Symbol(esi)) {
		t.Fatal("repair symbol should be a sum of intermediate symbols")
	}

	packets, err := enc.RepairPackets(5, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range packets {
		if p.SourceBlockNumber != 3 || p.EncodingSymbolID != 15+uint32(i) {
			t.Fatalf("unexpected id %+v", p.PayloadID)
		}
	}

	start := MaxESI - enc.SourceSymbolsNum() - 1
	last, err := enc.RepairPackets(start, 2)
	if err != nil {
		t.Fatal("last esi should fit, got", err)
	}
	if last[1].EncodingSymbolID != MaxESI {
		t.Fatal("last packet should have max esi, got", last[1].EncodingSymbolID)
	}
	if _, err = enc.RepairPackets(start, 3); !errors.Is(err, ErrInvalidParameters) {
		t.Fatal("esi overflow should fail, got", err)
	}
}

func BenchmarkEncoder(b *testing.B) {
	data := make([]byte, 256*1024)
	rand.Read(data)

	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		enc, err := NewEncoder(data, 1280)
		if err != nil {
			b.Fatal(err)
		}
		if _, err = enc.Packets(32); err != nil {
			b.Fatal(err)
		}
	}
}
