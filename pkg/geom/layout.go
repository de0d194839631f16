package geom

// Layout describes which ordinates a coordinate carries beyond X and Y.
type Layout uint8

const (
	XY Layout = iota
	XYZ
	XYM
	XYZM
)

// NewLayout builds a layout from dimensionality flags.
func NewLayout(hasZ, hasM bool) Layout {
	switch {
	case hasZ && hasM:
		return XYZM
	case hasZ:
		return XYZ
	case hasM:
		return XYM
	default:
		return XY
	}
}

func (l Layout) HasZ() bool {
	return l == XYZ || l == XYZM
}

func (l Layout) HasM() bool {
	return l == XYM || l == XYZM
}

// Stride is the number of float64 ordinates per coordinate.
func (l Layout) Stride() int {
	n := 2
	if l.HasZ() {
		n++
	}
	if l.HasM() {
		n++
	}
	return n
}

// Suffix returns the PostGIS dimensionality suffix: "", "Z", "M" or "ZM".
func (l Layout) Suffix() string {
	switch l {
	case XYZ:
		return "Z"
	case XYM:
		return "M"
	case XYZM:
		return "ZM"
	default:
		return ""
	}
}

func (l Layout) String() string {
	return "XY" + l.Suffix()
}

// Coord is a single position. Ordinates outside the owning geometry's layout
// are kept at zero.
type Coord struct {
	X float64
	Y float64
	Z float64
	M float64
}

// Ordinates returns the coordinate as a flat slice in x, y, [z], [m] order.
func (c Coord) Ordinates(l Layout) []float64 {
	out := []float64{c.X, c.Y}
	if l.HasZ() {
		out = append(out, c.Z)
	}
	if l.HasM() {
		out = append(out, c.M)
	}
	return out
}

// CoordFromOrdinates is the inverse of Ordinates. It expects exactly
// l.Stride() values.
func CoordFromOrdinates(l Layout, ords []float64) Coord {
	c := Coord{X: ords[0], Y: ords[1]}
	i := 2
	if l.HasZ() {
		c.Z = ords[i]
		i++
	}
	if l.HasM() {
		c.M = ords[i]
	}
	return c
}

// trim zeroes the ordinates that the layout does not carry.
func (c Coord) trim(l Layout) Coord {
	if !l.HasZ() {
		c.Z = 0
	}
	if !l.HasM() {
		c.M = 0
	}
	return c
}

func trimAll(coords []Coord, l Layout) []Coord {
	out := make([]Coord, len(coords))
	for i, c := range coords {
		out[i] = c.trim(l)
	}
	return out
}
