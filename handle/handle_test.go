package handle

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/andreypfau/raptorq"
)

func TestRoundTrip(t *testing.T) {
	data := make([]byte, 12345)
	rand.New(rand.NewSource(1)).Read(data)

	enc := EncoderWithDefaults(data, 1200)
	if enc == 0 {
		t.Fatal("encoder not created")
	}
	defer EncoderFree(enc)

	dec := DecoderWithDefaults(uint64(len(data)), 1200)
	if dec == 0 {
		t.Fatal("decoder not created")
	}
	defer DecoderFree(dec)

	buf := make([]byte, 4+1200)
	if n := EncoderNextPacket(enc, buf); n != CodeInvalidState {
		t.Fatal("next packet before encode should fail, got", n)
	}

	n := EncoderEncode(enc, 3)
	if n != 11+3 {
		t.Fatal("unexpected queued packets", n)
	}
	if n = EncoderEncode(enc, 3); n != CodeInvalidState {
		t.Fatal("second encode should fail, got", n)
	}

	if n = EncoderNextPacket(enc, buf[:100]); n != CodeBufferTooSmall {
		t.Fatal("short buffer should fail, got", n)
	}

	out := make([]byte, len(data))
	first := true
	for {
		sz := EncoderNextPacket(enc, buf)
		if sz < 0 {
			t.Fatal("next packet failed", sz)
		}
		if sz == 0 {
			t.Fatal("object is not decoded")
		}

		// lose the first packet
		if first {
			first = false
			continue
		}

		res := DecoderDecode(dec, buf[:sz], out)
		if res < 0 {
			t.Fatal("decode failed", res)
		}
		if res > 0 {
			if res != len(data) {
				t.Fatal("wrong decoded size", res)
			}
			break
		}
	}

	if !bytes.Equal(out, data) {
		t.Fatal("decoded data differs")
	}
}

func TestInvalid(t *testing.T) {
	if h := EncoderWithDefaults(nil, 1200); h != 0 {
		t.Fatal("empty data should not create encoder")
	}
	if h := DecoderWithDefaults(100, 4); h != 0 {
		t.Fatal("tiny mtu should not create decoder")
	}

	if n := EncoderEncode(12345678, 1); n != CodeInvalidHandle {
		t.Fatal("unknown handle should fail, got", n)
	}
	if n := DecoderDecode(12345678, []byte{0, 0, 0, 0}, nil); n != CodeInvalidHandle {
		t.Fatal("unknown handle should fail, got", n)
	}

	dec := DecoderWithDefaults(100, 64)
	if n := DecoderDecode(dec, []byte{0, 0}, nil); n != CodeMalformedPacket {
		t.Fatal("short packet should fail, got", n)
	}
	DecoderFree(dec)
	DecoderFree(dec)
	if n := DecoderDecode(dec, make([]byte, 68), nil); n != CodeInvalidHandle {
		t.Fatal("freed handle should fail, got", n)
	}

	enc := EncoderWithDefaults(make([]byte, 100), 64)
	EncoderFree(enc)
	if n := EncoderNextPacket(enc, make([]byte, 68)); n != CodeInvalidHandle {
		t.Fatal("freed handle should fail, got", n)
	}
}

func TestSetConfig(t *testing.T) {
	defer func() {
		if err := SetConfig(raptorq.DefaultConfig); err != nil {
			t.Fatal(err)
		}
	}()

	bad := raptorq.DefaultConfig
	bad.MatrixCacheBytes = 0
	if err := SetConfig(bad); Code(err) != CodeInvalidParameters {
		t.Fatal("invalid config should be rejected, got", err)
	}

	cfg := raptorq.DefaultConfig
	cfg.MaxRepairPerBlock = 2
	if err := SetConfig(cfg); err != nil {
		t.Fatal(err)
	}

	enc := EncoderWithDefaults(make([]byte, 100), 64)
	defer EncoderFree(enc)
	if n := EncoderEncode(enc, 3); n != CodeInvalidParameters {
		t.Fatal("repair limit should apply, got", n)
	}
	if n := EncoderEncode(enc, 2); n != 4 {
		t.Fatal("unexpected queued packets", n)
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{raptorq.ErrInvalidParameters, CodeInvalidParameters},
		{fmt.Errorf("wrapped: %w", raptorq.ErrInvalidState), CodeInvalidState},
		{raptorq.ErrMalformedPacket, CodeMalformedPacket},
		{raptorq.ErrBufferTooSmall, CodeBufferTooSmall},
		{raptorq.ErrInsufficientSymbols, CodeInternal},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.code {
			t.Errorf("Code(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}
