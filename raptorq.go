// Package raptorq implements the RaptorQ fountain code (RFC 6330): object
// partitioning, systematic encoding, repair symbol generation and
// incremental decoding from any sufficiently large set of packets.
package raptorq

// Logger is called with diagnostic messages, silent by default.
var Logger = func(a ...any) {}
