// Package ewkb converts geometries to and from PostGIS Extended Well-Known
// Binary.
//
// The type code of every value carries the OGC kind in its low byte and three
// flag bits:
//
//	0x80000000  Z ordinate present
//	0x40000000  M ordinate present
//	0x20000000  a 4-byte SRID follows the type code
//
// Encoding always writes little-endian and emits the SRID once, on the
// outermost value. Decoding honours the byte-order byte of every value and
// also accepts ISO WKB dimension offsets (1000 Z, 2000 M, 3000 ZM).
package ewkb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedInput is returned for truncated or otherwise invalid EWKB.
var ErrMalformedInput = errors.New("malformed ewkb input")

const (
	bigEndian    byte = 0x00
	littleEndian byte = 0x01

	flagZ    uint32 = 0x80000000
	flagM    uint32 = 0x40000000
	flagSRID uint32 = 0x20000000
	flagMask        = flagZ | flagM | flagSRID

	isoZ  = 1000
	isoM  = 2000
	isoZM = 3000
)

// byteOrder combines the read and append halves of encoding/binary.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
