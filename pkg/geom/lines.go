package geom

type LineString struct {
	Coords []Coord
	SRID   int
	Layout Layout
}

func NewLineString(layout Layout, srid int, coords []Coord) LineString {
	return LineString{
		Coords: trimAll(coords, layout),
		SRID:   srid,
		Layout: layout,
	}
}

func (l LineString) GetGeometryType() GeometryType {
	return LINESTRING
}

func (l LineString) GetSRID() int {
	return l.SRID
}

func (l LineString) GetLayout() Layout {
	return l.Layout
}

// Validate requires at least two points.
func (l LineString) Validate() error {
	if len(l.Coords) < 2 {
		return invalidf("line string has %d points, need at least 2", len(l.Coords))
	}
	return nil
}

type MultiLineString struct {
	LineStrings []LineString
	SRID        int
	Layout      Layout
}

func NewMultiLineString(layout Layout, srid int, lines [][]Coord) MultiLineString {
	members := make([]LineString, len(lines))
	for i, coords := range lines {
		members[i] = NewLineString(layout, srid, coords)
	}

	return MultiLineString{
		LineStrings: members,
		SRID:        srid,
		Layout:      layout,
	}
}

func (m MultiLineString) GetGeometryType() GeometryType {
	return MULTILINESTRING
}

func (m MultiLineString) GetSRID() int {
	return m.SRID
}

func (m MultiLineString) GetLayout() Layout {
	return m.Layout
}

func (m MultiLineString) Validate() error {
	for i, l := range m.LineStrings {
		if err := checkMember(m, l, i); err != nil {
			return err
		}
	}
	return nil
}
