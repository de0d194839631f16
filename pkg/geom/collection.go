package geom

type GeometryCollection struct {
	Geometries []Geometry
	SRID       int
	Layout     Layout
}

// NewGeometryCollection rewrites the SRID of every member (recursively) to
// srid, so the collection invariant holds by construction. Layouts are left
// untouched and checked by Validate.
func NewGeometryCollection(layout Layout, srid int, members []Geometry) GeometryCollection {
	out := make([]Geometry, len(members))
	for i, g := range members {
		out[i] = WithSRID(g, srid)
	}

	return GeometryCollection{
		Geometries: out,
		SRID:       srid,
		Layout:     layout,
	}
}

func (c GeometryCollection) GetGeometryType() GeometryType {
	return GEOMETRYCOLLECTION
}

func (c GeometryCollection) GetSRID() int {
	return c.SRID
}

func (c GeometryCollection) GetLayout() Layout {
	return c.Layout
}

func (c GeometryCollection) Validate() error {
	for i, g := range c.Geometries {
		if g == nil {
			return invalidf("geometry collection member %d is nil", i)
		}
		if !Known(g) {
			return invalidf("geometry collection member %d has unsupported type %T", i, g)
		}
		if err := checkMember(c, g, i); err != nil {
			return err
		}
	}
	return nil
}

// WithSRID returns a copy of g, and of all nested members, carrying srid.
func WithSRID(g Geometry, srid int) Geometry {
	switch v := g.(type) {
	case Point:
		v.SRID = srid
		return v
	case LineString:
		v.SRID = srid
		return v
	case Polygon:
		v.SRID = srid
		return v
	case MultiPoint:
		points := make([]Point, len(v.Points))
		for i, p := range v.Points {
			p.SRID = srid
			points[i] = p
		}
		v.Points, v.SRID = points, srid
		return v
	case MultiLineString:
		lines := make([]LineString, len(v.LineStrings))
		for i, l := range v.LineStrings {
			l.SRID = srid
			lines[i] = l
		}
		v.LineStrings, v.SRID = lines, srid
		return v
	case MultiPolygon:
		polygons := make([]Polygon, len(v.Polygons))
		for i, p := range v.Polygons {
			p.SRID = srid
			polygons[i] = p
		}
		v.Polygons, v.SRID = polygons, srid
		return v
	case GeometryCollection:
		return NewGeometryCollection(v.Layout, srid, v.Geometries)
	default:
		return g
	}
}
