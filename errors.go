package raptorq

import "errors"

var (
	ErrInvalidParameters   = errors.New("invalid parameters")
	ErrInvalidState        = errors.New("invalid state")
	ErrMalformedPacket     = errors.New("malformed packet")
	ErrBufferTooSmall      = errors.New("buffer too small")
	ErrInsufficientSymbols = errors.New("not enough symbols")
)
