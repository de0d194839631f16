package introspect

import (
	"testing"

	"pg-spatial/pkg/column"
	"pg-spatial/pkg/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		meta string
		want column.Spec
	}{
		{"", column.Untyped()},
		{"   ", column.Untyped()},
		{"geometry", column.Untyped()},
		{"geography", column.Untyped()},
		{"geometry(PointZ,4326)", column.Spec{TypeName: "point", SRID: 4326, HasZ: true, Typmod: true}},
		{"geometry(Point,4326)", column.Spec{TypeName: "point", SRID: 4326, Typmod: true}},
		{"geography(Point,4326)", column.Spec{TypeName: "point", SRID: 4326, Typmod: true}},
		{"geometry(LineStringM,3857)", column.Spec{TypeName: "line_string", SRID: 3857, HasM: true, Typmod: true}},
		{"geometry(MultiPolygonZM,2263)", column.Spec{TypeName: "multi_polygon", SRID: 2263, HasZ: true, HasM: true, Typmod: true}},
		{"geometry(GeometryCollection)", column.Spec{TypeName: "geometry_collection", Typmod: true}},
		{"geometry(Geometry,4326)", column.Spec{TypeName: "geometry", SRID: 4326, Typmod: true}},
		{"GEOMETRY( pointz , 4326 )", column.Spec{TypeName: "point", SRID: 4326, HasZ: true, Typmod: true}},
		{"(MultiPoint,4326)", column.Spec{TypeName: "multi_point", SRID: 4326, Typmod: true}},
	}

	for _, c := range cases {
		t.Run(c.meta, func(t *testing.T) {
			got, err := Parse(c.meta)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, meta := range []string{
		"geometry(",
		"geometry(Point,4326",
		"geometry(Point,)",
		"geometry(Point,-1)",
		"geometry(Circle,4326)",
		"geometry(PointQ,4326)",
		"geometry(Z,4326)",
		"raster(Point,4326)",
		"PointZ",
		"geometry(Point,4326) extra",
		"geometry(Point,4326,1)",
	} {
		t.Run(meta, func(t *testing.T) {
			_, err := Parse(meta)
			assert.ErrorIs(t, err, ErrMalformedMetadata)
		})
	}
}

func TestParseColumn(t *testing.T) {
	spec, err := ParseColumn("geography(Point,4326)", true)
	require.NoError(t, err)
	assert.True(t, spec.Geographic)
	assert.Equal(t, "geography(Point,4326)", spec.SQLType())

	spec, err = ParseColumn("geometry(PolygonZ,3857)", false)
	require.NoError(t, err)
	assert.Equal(t, "geometry(PolygonZ,3857)", spec.SQLType())

	_, err = ParseColumn("geometry(", true)
	assert.ErrorIs(t, err, ErrMalformedMetadata)
}

func TestParsedSpecPinsDimensions(t *testing.T) {
	spec, err := Parse("geometry(PointZ,4326)")
	require.NoError(t, err)

	assert.NoError(t, spec.Conforms(geom.NewPoint(geom.XYZ, 4326, geom.Coord{X: 1, Y: 2, Z: 3})))
	assert.ErrorIs(t, spec.Conforms(geom.NewPoint(geom.XYZM, 4326, geom.Coord{X: 1, Y: 2, Z: 3, M: 4})), column.ErrNonConforming)
	assert.ErrorIs(t, spec.Conforms(geom.NewPointXY(1, 2, 4326)), column.ErrNonConforming)
}

func TestColumnFromRow(t *testing.T) {
	col, err := columnFromRow("geog", "geography", "geography(Point,4326)")
	require.NoError(t, err)
	assert.Equal(t, Column{
		Name: "geog",
		Spec: column.Spec{TypeName: "point", Geographic: true, SRID: 4326, Typmod: true},
	}, col)

	col, err = columnFromRow("geom", "geometry", "geometry")
	require.NoError(t, err)
	assert.Equal(t, Column{Name: "geom", Spec: column.Untyped()}, col)

	_, err = columnFromRow("bad", "geometry", "geometry(Circle)")
	assert.ErrorIs(t, err, ErrMalformedMetadata)
	assert.Contains(t, err.Error(), "column bad")
}
