package ewkb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"pg-spatial/pkg/column"
	"pg-spatial/pkg/geom"
)

// Decode parses one EWKB value. The whole buffer must be consumed: trailing
// bytes are reported as malformed input, as is anything that does not satisfy
// the geometry invariants (unclosed rings, line strings under two points,
// members whose kind or layout does not fit their parent).
func Decode(b []byte) (geom.Geometry, error) {
	d := decoder{buf: b}

	g, err := d.geometry(nil)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.buf) {
		return nil, malformed("%d trailing bytes after geometry", len(d.buf)-d.pos)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	return g, nil
}

// DecodeColumn decodes b and checks the result against a column spec.
func DecodeColumn(b []byte, spec column.Spec) (geom.Geometry, error) {
	g, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if err := spec.Conforms(g); err != nil {
		return nil, err
	}
	return g, nil
}

type decoder struct {
	buf   []byte
	pos   int
	order byteOrder
}

// header is the decoded prefix of one value.
type header struct {
	kind   geom.GeometryType
	layout geom.Layout
	srid   int
}

func (d *decoder) need(n int, what string) error {
	if n < 0 || len(d.buf)-d.pos < n {
		return malformed("need %d bytes for %s at offset %d, have %d", n, what, d.pos, len(d.buf)-d.pos)
	}
	return nil
}

func (d *decoder) uint32(what string) (uint32, error) {
	if err := d.need(4, what); err != nil {
		return 0, err
	}
	v := d.order.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) float64() float64 {
	v := math.Float64frombits(d.order.Uint64(d.buf[d.pos:]))
	d.pos += 8
	return v
}

// count reads an element count and checks that the remaining input can hold
// at least count*minSize bytes, so a corrupt count never drives a huge
// allocation.
func (d *decoder) count(minSize int, what string) (int, error) {
	n, err := d.uint32(what + " count")
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(minSize) > uint64(len(d.buf)-d.pos) {
		return 0, malformed("%s count %d exceeds remaining %d bytes", what, n, len(d.buf)-d.pos)
	}
	return int(n), nil
}

func (d *decoder) readHeader() (header, error) {
	if err := d.need(1, "byte order"); err != nil {
		return header{}, err
	}
	switch d.buf[d.pos] {
	case littleEndian:
		d.order = binary.LittleEndian
	case bigEndian:
		d.order = binary.BigEndian
	default:
		return header{}, malformed("unknown byte order 0x%02x at offset %d", d.buf[d.pos], d.pos)
	}
	d.pos++

	code, err := d.uint32("type code")
	if err != nil {
		return header{}, err
	}

	hasZ := code&flagZ != 0
	hasM := code&flagM != 0
	base := code &^ flagMask

	switch base / 1000 {
	case 0:
	case isoZ / 1000:
		hasZ = true
	case isoM / 1000:
		hasM = true
	case isoZM / 1000:
		hasZ, hasM = true, true
	default:
		return header{}, malformed("unknown type code 0x%08x", code)
	}

	kind := geom.GeometryType(base % 1000)
	if kind == geom.GEOMETRY || !kind.Valid() {
		return header{}, malformed("unknown type code 0x%08x", code)
	}

	h := header{kind: kind, layout: geom.NewLayout(hasZ, hasM)}
	if code&flagSRID != 0 {
		srid, err := d.uint32("srid")
		if err != nil {
			return header{}, err
		}
		h.srid = int(srid)
	}

	return h, nil
}

func (d *decoder) coords(l geom.Layout, what string) ([]geom.Coord, error) {
	size := 8 * l.Stride()
	n, err := d.count(size, what)
	if err != nil {
		return nil, err
	}

	out := make([]geom.Coord, n)
	for i := range out {
		out[i] = d.coord(l)
	}
	return out, nil
}

// coord reads one position; callers have already checked the length.
func (d *decoder) coord(l geom.Layout) geom.Coord {
	c := geom.Coord{X: d.float64(), Y: d.float64()}
	if l.HasZ() {
		c.Z = d.float64()
	}
	if l.HasM() {
		c.M = d.float64()
	}
	return c
}

// geometry decodes one value. Nested values inherit the SRID of parent and
// ignore any SRID they carry themselves.
func (d *decoder) geometry(parent *header) (geom.Geometry, error) {
	start := d.pos
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if parent != nil {
		h.srid = parent.srid
	}

	l := h.layout
	switch h.kind {
	case geom.POINT:
		if err := d.need(8*l.Stride(), "point"); err != nil {
			return nil, err
		}
		return geom.Point{Coord: d.coord(l), SRID: h.srid, Layout: l}, nil

	case geom.LINESTRING:
		coords, err := d.coords(l, "line string")
		if err != nil {
			return nil, err
		}
		return geom.LineString{Coords: coords, SRID: h.srid, Layout: l}, nil

	case geom.POLYGON:
		n, err := d.count(4, "ring")
		if err != nil {
			return nil, err
		}
		rings := make([][]geom.Coord, n)
		for i := range rings {
			if rings[i], err = d.coords(l, "ring"); err != nil {
				return nil, err
			}
		}
		return geom.Polygon{Rings: rings, SRID: h.srid, Layout: l}, nil

	case geom.MULTIPOINT:
		members, err := d.members(&h, geom.POINT)
		if err != nil {
			return nil, err
		}
		points := make([]geom.Point, len(members))
		for i, m := range members {
			points[i] = m.(geom.Point)
		}
		return geom.MultiPoint{Points: points, SRID: h.srid, Layout: l}, nil

	case geom.MULTILINESTRING:
		members, err := d.members(&h, geom.LINESTRING)
		if err != nil {
			return nil, err
		}
		lines := make([]geom.LineString, len(members))
		for i, m := range members {
			lines[i] = m.(geom.LineString)
		}
		return geom.MultiLineString{LineStrings: lines, SRID: h.srid, Layout: l}, nil

	case geom.MULTIPOLYGON:
		members, err := d.members(&h, geom.POLYGON)
		if err != nil {
			return nil, err
		}
		polygons := make([]geom.Polygon, len(members))
		for i, m := range members {
			polygons[i] = m.(geom.Polygon)
		}
		return geom.MultiPolygon{Polygons: polygons, SRID: h.srid, Layout: l}, nil

	case geom.GEOMETRYCOLLECTION:
		members, err := d.members(&h, geom.GEOMETRY)
		if err != nil {
			return nil, err
		}
		return geom.GeometryCollection{Geometries: members, SRID: h.srid, Layout: l}, nil
	}

	return nil, malformed("unknown geometry kind %d at offset %d", h.kind, start)
}

// members decodes the children of a multi geometry or collection. want is
// the required member kind, or GEOMETRY for any.
func (d *decoder) members(h *header, want geom.GeometryType) ([]geom.Geometry, error) {
	// the smallest member is a header (5 bytes) plus a count or coordinate
	n, err := d.count(9, h.kind.String()+" member")
	if err != nil {
		return nil, err
	}

	out := make([]geom.Geometry, n)
	for i := range out {
		order := d.order
		g, err := d.geometry(h)
		if err != nil {
			return nil, err
		}
		d.order = order

		if want != geom.GEOMETRY && g.GetGeometryType() != want {
			return nil, malformed("%s member %d is a %s", h.kind, i, g.GetGeometryType())
		}
		if g.GetLayout() != h.layout {
			return nil, malformed("%s member %d has layout %s, parent has %s", h.kind, i, g.GetLayout(), h.layout)
		}
		out[i] = g
	}
	return out, nil
}

// IsMalformed reports whether err came from decoding bad input.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
