package ewkb

import (
	"encoding/hex"
	"fmt"
	"strings"

	"pg-spatial/pkg/geom"
)

// ToHexString renders b as uppercase hex with no separators, the form
// PostGIS prints and accepts for geometry text input.
func ToHexString(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// FromHexString parses hex in either case.
func FromHexString(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return b, nil
}

// EncodeHex is Encode followed by ToHexString.
func EncodeHex(g geom.Geometry, emitSRID bool) (string, error) {
	b, err := Encode(g, emitSRID)
	if err != nil {
		return "", err
	}
	return ToHexString(b), nil
}

// DecodeHex is FromHexString followed by Decode.
func DecodeHex(s string) (geom.Geometry, error) {
	b, err := FromHexString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return Decode(b)
}
