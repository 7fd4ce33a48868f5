// Package handle exposes encoders and decoders through opaque integer
// handles and sentinel result codes, for callers that cannot hold Go values.
package handle

import (
	"errors"
	"sync"

	"github.com/andreypfau/raptorq"
)

// Handle identifies an encoder or a decoder, 0 is never valid.
type Handle uint64

const (
	CodeInvalidParameters = -1
	CodeInvalidState      = -2
	CodeMalformedPacket   = -3
	CodeBufferTooSmall    = -4
	CodeInvalidHandle     = -5
	CodeInternal          = -6
)

var (
	mx       sync.Mutex
	lastID   Handle
	encoders = map[Handle]*raptorq.Encoder{}
	decoders = map[Handle]*raptorq.Decoder{}
)

// config is used by encoders and decoders created after it is set.
var config = raptorq.DefaultConfig

func nextHandle() Handle {
	lastID++
	return lastID
}

// Code maps an error to a sentinel result code.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, raptorq.ErrInvalidParameters):
		return CodeInvalidParameters
	case errors.Is(err, raptorq.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, raptorq.ErrMalformedPacket):
		return CodeMalformedPacket
	case errors.Is(err, raptorq.ErrBufferTooSmall):
		return CodeBufferTooSmall
	}
	return CodeInternal
}

// EncoderWithDefaults returns 0 when data or mtu are not acceptable.
func EncoderWithDefaults(data []byte, mtu uint16) Handle {
	mx.Lock()
	cfg := config
	mx.Unlock()

	enc, err := raptorq.NewEncoderWithConfig(cfg, data, mtu)
	if err != nil {
		raptorq.Logger("[RAPTORQ] failed to create encoder:", err.Error())
		return 0
	}

	mx.Lock()
	defer mx.Unlock()

	h := nextHandle()
	encoders[h] = enc
	return h
}

func encoder(h Handle) *raptorq.Encoder {
	mx.Lock()
	defer mx.Unlock()
	return encoders[h]
}

func decoder(h Handle) *raptorq.Decoder {
	mx.Lock()
	defer mx.Unlock()
	return decoders[h]
}

// EncoderEncode returns the number of queued packets or a negative code.
func EncoderEncode(h Handle, repairPerBlock uint32) int {
	enc := encoder(h)
	if enc == nil {
		return CodeInvalidHandle
	}

	n, err := enc.Encode(repairPerBlock)
	if err != nil {
		return Code(err)
	}
	return n
}

// EncoderNextPacket returns the packet length, 0 when all packets are emitted or a negative code.
func EncoderNextPacket(h Handle, out []byte) int {
	enc := encoder(h)
	if enc == nil {
		return CodeInvalidHandle
	}

	n, err := enc.NextPacket(out)
	if err != nil {
		return Code(err)
	}
	return n
}

func EncoderFree(h Handle) {
	mx.Lock()
	enc := encoders[h]
	delete(encoders, h)
	mx.Unlock()

	if enc != nil {
		enc.Close()
	}
}

// DecoderWithDefaults returns 0 when parameters are not acceptable.
func DecoderWithDefaults(transferLength uint64, mtu uint16) Handle {
	mx.Lock()
	cfg := config
	mx.Unlock()

	dec, err := raptorq.NewDecoderWithConfig(cfg, transferLength, mtu)
	if err != nil {
		raptorq.Logger("[RAPTORQ] failed to create decoder:", err.Error())
		return 0
	}

	mx.Lock()
	defer mx.Unlock()

	h := nextHandle()
	decoders[h] = dec
	return h
}

// DecoderDecode returns the object length once it is recovered into out,
// 0 when more packets are needed or a negative code.
func DecoderDecode(h Handle, packet []byte, out []byte) int {
	dec := decoder(h)
	if dec == nil {
		return CodeInvalidHandle
	}

	n, err := dec.Decode(packet, out)
	if err != nil {
		return Code(err)
	}
	return n
}

func DecoderFree(h Handle) {
	mx.Lock()
	dec := decoders[h]
	delete(decoders, h)
	mx.Unlock()

	if dec != nil {
		dec.Close()
	}
}

// SetConfig sets the config of encoders and decoders created later.
func SetConfig(cfg raptorq.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	mx.Lock()
	defer mx.Unlock()
	config = cfg
	return nil
}
