package geom

// Polygon is a list of closed rings. The first ring is the exterior ring, the
// rest are holes. A polygon without rings is the empty polygon.
type Polygon struct {
	Rings  [][]Coord
	SRID   int
	Layout Layout
}

func NewPolygon(layout Layout, srid int, rings [][]Coord) Polygon {
	out := make([][]Coord, len(rings))
	for i, r := range rings {
		out[i] = trimAll(r, layout)
	}

	return Polygon{
		Rings:  out,
		SRID:   srid,
		Layout: layout,
	}
}

func (p Polygon) GetGeometryType() GeometryType {
	return POLYGON
}

func (p Polygon) GetSRID() int {
	return p.SRID
}

func (p Polygon) GetLayout() Layout {
	return p.Layout
}

// Exterior returns the exterior ring, or nil for the empty polygon.
func (p Polygon) Exterior() []Coord {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// Validate requires every ring to be closed.
func (p Polygon) Validate() error {
	for i, ring := range p.Rings {
		if !RingClosed(ring) {
			return invalidf("polygon ring %d is not closed", i)
		}
	}
	return nil
}

// RingClosed reports whether a ring is non-empty and ends where it starts.
func RingClosed(ring []Coord) bool {
	if len(ring) == 0 {
		return false
	}
	return ring[0] == ring[len(ring)-1]
}

type MultiPolygon struct {
	Polygons []Polygon
	SRID     int
	Layout   Layout
}

func NewMultiPolygon(layout Layout, srid int, polygons [][][]Coord) MultiPolygon {
	members := make([]Polygon, len(polygons))
	for i, rings := range polygons {
		members[i] = NewPolygon(layout, srid, rings)
	}

	return MultiPolygon{
		Polygons: members,
		SRID:     srid,
		Layout:   layout,
	}
}

func (m MultiPolygon) GetGeometryType() GeometryType {
	return MULTIPOLYGON
}

func (m MultiPolygon) GetSRID() int {
	return m.SRID
}

func (m MultiPolygon) GetLayout() Layout {
	return m.Layout
}

func (m MultiPolygon) Validate() error {
	for i, p := range m.Polygons {
		if err := checkMember(m, p, i); err != nil {
			return err
		}
	}
	return nil
}
