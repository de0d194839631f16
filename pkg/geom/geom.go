package geom

import (
	"errors"
	"fmt"
	"strings"
)

// GeometryType is the OGC geometry kind. The numeric value is the WKB kind code.
type GeometryType uint32

const (
	GEOMETRY           GeometryType = 0
	POINT              GeometryType = 1
	LINESTRING         GeometryType = 2
	POLYGON            GeometryType = 3
	MULTIPOINT         GeometryType = 4
	MULTILINESTRING    GeometryType = 5
	MULTIPOLYGON       GeometryType = 6
	GEOMETRYCOLLECTION GeometryType = 7
)

const maxGeometryTypeCode = GEOMETRYCOLLECTION

var typeNames = map[GeometryType][2]string{
	GEOMETRY:           {"Geometry", "geometry"},
	POINT:              {"Point", "point"},
	LINESTRING:         {"LineString", "line_string"},
	POLYGON:            {"Polygon", "polygon"},
	MULTIPOINT:         {"MultiPoint", "multi_point"},
	MULTILINESTRING:    {"MultiLineString", "multi_line_string"},
	MULTIPOLYGON:       {"MultiPolygon", "multi_polygon"},
	GEOMETRYCOLLECTION: {"GeometryCollection", "geometry_collection"},
}

// Valid reports whether t is one of the known kind codes.
func (t GeometryType) Valid() bool {
	return t <= maxGeometryTypeCode
}

// String returns the OGC name, e.g. "MultiPolygon".
func (t GeometryType) String() string {
	if n, ok := typeNames[t]; ok {
		return n[0]
	}
	return fmt.Sprintf("GeometryType(%d)", uint32(t))
}

// TypeName returns the snake_case column type name, e.g. "multi_polygon".
func (t GeometryType) TypeName() string {
	if n, ok := typeNames[t]; ok {
		return n[1]
	}
	return ""
}

// GeometryTypeFromName looks a kind up by its OGC or snake_case name.
// The match is case-insensitive.
func GeometryTypeFromName(name string) (GeometryType, bool) {
	for t, n := range typeNames {
		if strings.EqualFold(n[0], name) || strings.EqualFold(n[1], name) {
			return t, true
		}
	}
	return GEOMETRY, false
}

// ErrInvalidGeometry is returned by Validate when a geometry breaks a
// structural invariant.
var ErrInvalidGeometry = errors.New("invalid geometry")

type Geometry interface {
	GetGeometryType() GeometryType
	GetSRID() int
	GetLayout() Layout
	Validate() error
}

// Known reports whether g is one of the value types of this package. Pointers
// to them also satisfy Geometry but are not accepted, a nil one included.
func Known(g Geometry) bool {
	switch g.(type) {
	case Point, LineString, Polygon, MultiPoint, MultiLineString, MultiPolygon, GeometryCollection:
		return true
	}
	return false
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGeometry, fmt.Sprintf(format, args...))
}
