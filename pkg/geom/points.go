package geom

type Point struct {
	Coord  Coord
	SRID   int
	Layout Layout
}

// NewPoint creates a point. Ordinates not covered by layout are dropped.
func NewPoint(layout Layout, srid int, c Coord) Point {
	return Point{
		Coord:  c.trim(layout),
		SRID:   srid,
		Layout: layout,
	}
}

// NewPointXY is shorthand for a planar 2D point.
func NewPointXY(x, y float64, srid int) Point {
	return NewPoint(XY, srid, Coord{X: x, Y: y})
}

// Get geometry type
func (p Point) GetGeometryType() GeometryType {
	return POINT
}

// Get SRID
func (p Point) GetSRID() int {
	return p.SRID
}

// Get coordinate layout
func (p Point) GetLayout() Layout {
	return p.Layout
}

func (p Point) Validate() error {
	return nil
}

type MultiPoint struct {
	Points []Point
	SRID   int
	Layout Layout
}

// NewMultiPoint creates a multi point whose members take the collection's
// SRID and layout.
func NewMultiPoint(layout Layout, srid int, coords []Coord) MultiPoint {
	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = NewPoint(layout, srid, c)
	}

	return MultiPoint{
		Points: points,
		SRID:   srid,
		Layout: layout,
	}
}

func (m MultiPoint) GetGeometryType() GeometryType {
	return MULTIPOINT
}

func (m MultiPoint) GetSRID() int {
	return m.SRID
}

func (m MultiPoint) GetLayout() Layout {
	return m.Layout
}

func (m MultiPoint) Validate() error {
	for i, p := range m.Points {
		if err := checkMember(m, p, i); err != nil {
			return err
		}
	}
	return nil
}

// checkMember enforces that a nested geometry shares SRID and layout with its
// parent and is itself valid.
func checkMember(parent, member Geometry, idx int) error {
	if member.GetSRID() != parent.GetSRID() {
		return invalidf("%s member %d has SRID %d, parent has %d",
			parent.GetGeometryType(), idx, member.GetSRID(), parent.GetSRID())
	}
	if member.GetLayout() != parent.GetLayout() {
		return invalidf("%s member %d has layout %s, parent has %s",
			parent.GetGeometryType(), idx, member.GetLayout(), parent.GetLayout())
	}
	return member.Validate()
}
