package geom

import "math"

// Box is a planar bounding box.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Envelope returns the 2D bounding box of g. The second return value is false
// when g has no coordinates.
func Envelope(g Geometry) (Box, bool) {
	b := Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	empty := true

	add := func(c Coord) {
		b.MinX = math.Min(b.MinX, c.X)
		b.MinY = math.Min(b.MinY, c.Y)
		b.MaxX = math.Max(b.MaxX, c.X)
		b.MaxY = math.Max(b.MaxY, c.Y)
		empty = false
	}
	walkCoords(g, add)

	if empty {
		return Box{}, false
	}
	return b, true
}

// Contains reports whether c lies inside or on the edge of b.
func (b Box) Contains(c Coord) bool {
	return c.X >= b.MinX && c.X <= b.MaxX && c.Y >= b.MinY && c.Y <= b.MaxY
}

func walkCoords(g Geometry, fn func(Coord)) {
	switch v := g.(type) {
	case Point:
		fn(v.Coord)
	case LineString:
		for _, c := range v.Coords {
			fn(c)
		}
	case Polygon:
		for _, r := range v.Rings {
			for _, c := range r {
				fn(c)
			}
		}
	case MultiPoint:
		for _, p := range v.Points {
			fn(p.Coord)
		}
	case MultiLineString:
		for _, l := range v.LineStrings {
			walkCoords(l, fn)
		}
	case MultiPolygon:
		for _, p := range v.Polygons {
			walkCoords(p, fn)
		}
	case GeometryCollection:
		for _, m := range v.Geometries {
			walkCoords(m, fn)
		}
	}
}
