package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, size float64) []Coord {
	return []Coord{
		{X: x0, Y: y0},
		{X: x0 + size, Y: y0},
		{X: x0 + size, Y: y0 + size},
		{X: x0, Y: y0 + size},
		{X: x0, Y: y0},
	}
}

func TestGeometryTypeNames(t *testing.T) {
	t.Run(
		"type name round trip", func(t *testing.T) {
			for code := GEOMETRY; code <= GEOMETRYCOLLECTION; code++ {
				byTypeName, ok := GeometryTypeFromName(code.TypeName())
				assert.True(t, ok)
				assert.Equal(t, code, byTypeName)

				byOGCName, ok := GeometryTypeFromName(code.String())
				assert.True(t, ok)
				assert.Equal(t, code, byOGCName)
			}
		},
	)

	t.Run(
		"case insensitive lookup", func(t *testing.T) {
			code, ok := GeometryTypeFromName("MULTILINESTRING")
			assert.True(t, ok)
			assert.Equal(t, MULTILINESTRING, code)
		},
	)

	t.Run(
		"unknown names", func(t *testing.T) {
			_, ok := GeometryTypeFromName("circular_string")
			assert.False(t, ok)
			assert.False(t, GeometryType(8).Valid())
			assert.Equal(t, "GeometryType(8)", GeometryType(8).String())
		},
	)
}

func TestLayout(t *testing.T) {
	cases := []struct {
		hasZ, hasM bool
		layout     Layout
		stride     int
		suffix     string
	}{
		{false, false, XY, 2, ""},
		{true, false, XYZ, 3, "Z"},
		{false, true, XYM, 3, "M"},
		{true, true, XYZM, 4, "ZM"},
	}

	for _, c := range cases {
		t.Run(c.layout.String(), func(t *testing.T) {
			l := NewLayout(c.hasZ, c.hasM)
			assert.Equal(t, c.layout, l)
			assert.Equal(t, c.hasZ, l.HasZ())
			assert.Equal(t, c.hasM, l.HasM())
			assert.Equal(t, c.stride, l.Stride())
			assert.Equal(t, c.suffix, l.Suffix())

			coord := Coord{X: 1, Y: 2, Z: 3, M: 4}.trim(l)
			assert.Equal(t, coord, CoordFromOrdinates(l, coord.Ordinates(l)))
		})
	}
}

func TestConstructorsTrimOrdinates(t *testing.T) {
	p := NewPoint(XYM, 4326, Coord{X: 1, Y: 2, Z: 99, M: 7})
	assert.Equal(t, Coord{X: 1, Y: 2, M: 7}, p.Coord)
	assert.Equal(t, 4326, p.GetSRID())
	assert.Equal(t, POINT, p.GetGeometryType())
	assert.True(t, p.GetLayout().HasM())
}

func TestValidate(t *testing.T) {
	t.Run(
		"line string needs two points", func(t *testing.T) {
			l := NewLineString(XY, 0, []Coord{{X: 1, Y: 1}})
			assert.ErrorIs(t, l.Validate(), ErrInvalidGeometry)

			l = NewLineString(XY, 0, []Coord{{X: 1, Y: 1}, {X: 2, Y: 2}})
			assert.NoError(t, l.Validate())
		},
	)

	t.Run(
		"polygon rings must be closed", func(t *testing.T) {
			open := []Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
			p := NewPolygon(XY, 0, [][]Coord{square(0, 0, 10), open})
			assert.ErrorIs(t, p.Validate(), ErrInvalidGeometry)

			p = NewPolygon(XY, 0, [][]Coord{square(0, 0, 10), square(2, 2, 1)})
			assert.NoError(t, p.Validate())
			assert.Equal(t, square(0, 0, 10), p.Exterior())
		},
	)

	t.Run(
		"empty ring is not closed", func(t *testing.T) {
			p := NewPolygon(XY, 0, [][]Coord{{}})
			assert.ErrorIs(t, p.Validate(), ErrInvalidGeometry)
			assert.Nil(t, Polygon{}.Exterior())
		},
	)

	t.Run(
		"members share parent srid", func(t *testing.T) {
			mp := NewMultiPoint(XY, 4326, []Coord{{X: 1, Y: 1}})
			assert.NoError(t, mp.Validate())

			mp.Points[0].SRID = 3857
			assert.ErrorIs(t, mp.Validate(), ErrInvalidGeometry)
		},
	)

	t.Run(
		"members share parent layout", func(t *testing.T) {
			c := GeometryCollection{
				Geometries: []Geometry{NewPoint(XYZ, 0, Coord{X: 1, Y: 2, Z: 3})},
				Layout:     XY,
			}
			assert.ErrorIs(t, c.Validate(), ErrInvalidGeometry)
		},
	)

	t.Run(
		"nested invalid member", func(t *testing.T) {
			ml := NewMultiLineString(XY, 0, [][]Coord{{{X: 0, Y: 0}}})
			assert.ErrorIs(t, ml.Validate(), ErrInvalidGeometry)

			c := GeometryCollection{Geometries: []Geometry{nil}}
			assert.ErrorIs(t, c.Validate(), ErrInvalidGeometry)

			c = GeometryCollection{Geometries: []Geometry{(*Point)(nil)}}
			assert.ErrorIs(t, c.Validate(), ErrInvalidGeometry)
		},
	)
}

func TestKnown(t *testing.T) {
	p := NewPointXY(1, 2, 0)
	assert.True(t, Known(p))
	assert.True(t, Known(GeometryCollection{}))
	assert.False(t, Known(nil))
	assert.False(t, Known(&p))
	assert.False(t, Known((*MultiPolygon)(nil)))
}

func TestNewGeometryCollectionPropagatesSRID(t *testing.T) {
	inner := NewMultiPolygon(XY, 0, [][][]Coord{{square(0, 0, 1)}})
	c := NewGeometryCollection(XY, 4326, []Geometry{
		NewPointXY(1, 2, 0),
		inner,
		NewGeometryCollection(XY, 0, []Geometry{NewPointXY(3, 4, 3857)}),
	})

	require.NoError(t, c.Validate())
	assert.Equal(t, 4326, c.Geometries[1].(MultiPolygon).Polygons[0].SRID)
	nested := c.Geometries[2].(GeometryCollection)
	assert.Equal(t, 4326, nested.Geometries[0].GetSRID())

	// the input value is left untouched
	assert.Equal(t, 0, inner.Polygons[0].SRID)
}

func TestEnvelope(t *testing.T) {
	t.Run(
		"collection envelope", func(t *testing.T) {
			c := NewGeometryCollection(XY, 0, []Geometry{
				NewPointXY(-5, 3, 0),
				NewLineString(XY, 0, []Coord{{X: 0, Y: 0}, {X: 10, Y: -2}}),
				NewMultiPolygon(XY, 0, [][][]Coord{{square(1, 1, 20)}}),
			})

			box, ok := Envelope(c)
			require.True(t, ok)
			assert.Equal(t, Box{MinX: -5, MinY: -2, MaxX: 21, MaxY: 21}, box)
			assert.True(t, box.Contains(Coord{X: 0, Y: 0}))
			assert.False(t, box.Contains(Coord{X: 22, Y: 0}))
		},
	)

	t.Run(
		"empty geometry has no envelope", func(t *testing.T) {
			_, ok := Envelope(MultiPoint{})
			assert.False(t, ok)
		},
	)
}
