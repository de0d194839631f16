// Package literal renders spatial values as PostgreSQL literals.
package literal

import (
	"errors"
	"fmt"
	"strconv"

	"pg-spatial/pkg/ewkb"
	"pg-spatial/pkg/geom"
)

// ErrUnsupportedLiteral is returned for values that have no spatial literal.
var ErrUnsupportedLiteral = errors.New("unsupported literal value")

// Literal renders a geometry as a quoted hex EWKB literal ('0101000020E6...')
// and a box as '<min_x>,<min_y>,<max_x>,<max_y>'::box.
func Literal(v any) (string, error) {
	text, cast, err := spatialText(v)
	if err != nil {
		return "", err
	}
	return "'" + text + "'" + cast, nil
}

// spatialText returns the unquoted text of a spatial value and the cast
// suffix that goes after its inline literal.
func spatialText(v any) (text string, cast string, err error) {
	switch val := v.(type) {
	case geom.Box:
		return BoxText(val), "::box", nil
	case *geom.Box:
		if val == nil {
			return "", "", fmt.Errorf("%w: nil box", ErrUnsupportedLiteral)
		}
		return BoxText(*val), "::box", nil
	case geom.Geometry:
		if !geom.Known(val) {
			return "", "", fmt.Errorf("%w: %T", ErrUnsupportedLiteral, v)
		}
		hex, err := ewkb.EncodeHex(val, true)
		if err != nil {
			return "", "", err
		}
		return hex, "", nil
	default:
		return "", "", fmt.Errorf("%w: %T", ErrUnsupportedLiteral, v)
	}
}

// BoxText is the PostgreSQL box input form without quotes.
func BoxText(b geom.Box) string {
	return formatFloat(b.MinX) + "," + formatFloat(b.MinY) + "," +
		formatFloat(b.MaxX) + "," + formatFloat(b.MaxY)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsSpatial reports whether v has a spatial literal.
func IsSpatial(v any) bool {
	switch val := v.(type) {
	case geom.Box:
		return true
	case *geom.Box:
		return val != nil
	case geom.Geometry:
		return geom.Known(val)
	}
	return false
}
