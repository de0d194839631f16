package ewkb

import (
	"encoding/binary"
	"fmt"
	"math"

	"pg-spatial/pkg/geom"
)

// Encode serializes g to little-endian EWKB. When emitSRID is set and the
// SRID is non-zero the SRID flag and value are written after the outer type
// code. g is validated first; nothing is produced for an invalid geometry.
func Encode(g geom.Geometry, emitSRID bool) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("ewkb: %w: nil geometry", geom.ErrInvalidGeometry)
	}
	if !geom.Known(g) {
		return nil, fmt.Errorf("ewkb: %w: unsupported geometry %T", geom.ErrInvalidGeometry, g)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("ewkb: %w", err)
	}
	if g.GetSRID() < 0 || int64(g.GetSRID()) > math.MaxUint32 {
		return nil, fmt.Errorf("ewkb: %w: SRID %d out of range", geom.ErrInvalidGeometry, g.GetSRID())
	}

	e := encoder{order: binary.LittleEndian, buf: make([]byte, 0, encodedSize(g, emitSRID))}
	if err := e.geometry(g, emitSRID); err != nil {
		return nil, err
	}

	return e.buf, nil
}

type encoder struct {
	order byteOrder
	buf   []byte
}

func (e *encoder) header(g geom.Geometry, emitSRID bool) {
	code := uint32(g.GetGeometryType())
	l := g.GetLayout()
	if l.HasZ() {
		code |= flagZ
	}
	if l.HasM() {
		code |= flagM
	}

	withSRID := emitSRID && g.GetSRID() != 0
	if withSRID {
		code |= flagSRID
	}

	e.buf = append(e.buf, littleEndian)
	e.buf = e.order.AppendUint32(e.buf, code)
	if withSRID {
		e.buf = e.order.AppendUint32(e.buf, uint32(g.GetSRID()))
	}
}

func (e *encoder) coord(c geom.Coord, l geom.Layout) {
	e.buf = e.order.AppendUint64(e.buf, math.Float64bits(c.X))
	e.buf = e.order.AppendUint64(e.buf, math.Float64bits(c.Y))
	if l.HasZ() {
		e.buf = e.order.AppendUint64(e.buf, math.Float64bits(c.Z))
	}
	if l.HasM() {
		e.buf = e.order.AppendUint64(e.buf, math.Float64bits(c.M))
	}
}

func (e *encoder) coords(cs []geom.Coord, l geom.Layout) {
	e.count(len(cs))
	for _, c := range cs {
		e.coord(c, l)
	}
}

func (e *encoder) count(n int) {
	e.buf = e.order.AppendUint32(e.buf, uint32(n))
}

func (e *encoder) geometry(g geom.Geometry, emitSRID bool) error {
	e.header(g, emitSRID)
	l := g.GetLayout()

	switch v := g.(type) {
	case geom.Point:
		e.coord(v.Coord, l)
	case geom.LineString:
		e.coords(v.Coords, l)
	case geom.Polygon:
		e.count(len(v.Rings))
		for _, r := range v.Rings {
			e.coords(r, l)
		}
	case geom.MultiPoint:
		e.count(len(v.Points))
		for _, p := range v.Points {
			e.header(p, false)
			e.coord(p.Coord, l)
		}
	case geom.MultiLineString:
		e.count(len(v.LineStrings))
		for _, ls := range v.LineStrings {
			e.header(ls, false)
			e.coords(ls.Coords, l)
		}
	case geom.MultiPolygon:
		e.count(len(v.Polygons))
		for _, p := range v.Polygons {
			if err := e.geometry(p, false); err != nil {
				return err
			}
		}
	case geom.GeometryCollection:
		e.count(len(v.Geometries))
		for _, m := range v.Geometries {
			if err := e.geometry(m, false); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("ewkb: %w: unsupported geometry %T", geom.ErrInvalidGeometry, g)
	}
	return nil
}

// encodedSize returns the exact output length, used to size the buffer once.
func encodedSize(g geom.Geometry, emitSRID bool) int {
	n := 5
	if emitSRID && g.GetSRID() != 0 {
		n += 4
	}
	coordSize := 8 * g.GetLayout().Stride()

	switch v := g.(type) {
	case geom.Point:
		n += coordSize
	case geom.LineString:
		n += 4 + len(v.Coords)*coordSize
	case geom.Polygon:
		n += 4
		for _, r := range v.Rings {
			n += 4 + len(r)*coordSize
		}
	case geom.MultiPoint:
		n += 4 + len(v.Points)*(5+coordSize)
	case geom.MultiLineString:
		n += 4
		for _, ls := range v.LineStrings {
			n += encodedSize(ls, false)
		}
	case geom.MultiPolygon:
		n += 4
		for _, p := range v.Polygons {
			n += encodedSize(p, false)
		}
	case geom.GeometryCollection:
		n += 4
		for _, m := range v.Geometries {
			n += encodedSize(m, false)
		}
	}
	return n
}
