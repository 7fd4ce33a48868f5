package raptorq

import (
	"bytes"
	"testing"
)

func TestSplitJoinSymbols(t *testing.T) {
	data := make([]byte, 90)
	for i := range data {
		data[i] = byte(i + 1)
	}

	symbols := splitToSymbols(data, 4, []uint32{16, 8})
	if len(symbols) != 4 {
		t.Fatal("wrong symbols num", len(symbols))
	}
	for _, s := range symbols {
		if len(s) != 24 {
			t.Fatal("wrong symbol size", len(s))
		}
	}

	want0 := append(append([]byte{}, data[0:16]...), data[64:72]...)
	if !bytes.Equal(symbols[0], want0) {
		t.Fatalf("symbol 0 is %x, want %x", symbols[0], want0)
	}
	want3 := append(append([]byte{}, data[48:64]...), data[88:90]...)
	want3 = append(want3, make([]byte, 6)...)
	if !bytes.Equal(symbols[3], want3) {
		t.Fatalf("symbol 3 is %x, want %x", symbols[3], want3)
	}

	out := make([]byte, len(data))
	joinSymbols(out, symbols, []uint32{16, 8})
	if !bytes.Equal(out, data) {
		t.Fatal("joined data differs")
	}
}

func TestSplitSingleSubBlock(t *testing.T) {
	data := []byte("hello world bro! keke meme 881")

	symbols := splitToSymbols(data, 2, []uint32{20})
	if !bytes.Equal(symbols[0], data[:20]) {
		t.Fatal("first symbol differs")
	}
	if !bytes.Equal(symbols[1], append(append([]byte{}, data[20:]...), make([]byte, 10)...)) {
		t.Fatal("second symbol should be zero padded")
	}

	out := make([]byte, len(data))
	joinSymbols(out, symbols, []uint32{20})
	if !bytes.Equal(out, data) {
		t.Fatal("joined data differs")
	}
}
