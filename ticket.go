package raptorq

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/howeyc/crc16"
)

// Ticket returns the OTI as url-safe text protected by a checksum, so it
// can be passed to a receiver out of band.
func (o ObjectTransmissionInformation) Ticket() string {
	buf := o.Serialize()

	crc := make([]byte, 2)
	binary.BigEndian.PutUint16(crc, crc16.ChecksumCCITTFalse(buf))

	return base64.RawURLEncoding.EncodeToString(append(buf, crc...))
}

func ParseTicket(ticket string) (ObjectTransmissionInformation, error) {
	buf, err := base64.RawURLEncoding.DecodeString(ticket)
	if err != nil {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: failed to decode ticket: %v", ErrInvalidParameters, err)
	}
	if len(buf) != OTISize+2 {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: wrong ticket length", ErrInvalidParameters)
	}

	if binary.BigEndian.Uint16(buf[OTISize:]) != crc16.ChecksumCCITTFalse(buf[:OTISize]) {
		return ObjectTransmissionInformation{}, fmt.Errorf("%w: invalid ticket checksum", ErrInvalidParameters)
	}

	return ParseObjectTransmissionInformation(buf[:OTISize])
}
