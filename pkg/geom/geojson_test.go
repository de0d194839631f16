package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGeoJSON(t *testing.T) {
	t.Run(
		"point", func(t *testing.T) {
			out, err := ToGeoJSON(NewPointXY(95.35, 5.5, 4326))
			require.NoError(t, err)
			assert.JSONEq(t, `{"type":"Point","coordinates":[95.35,5.5]}`, string(out))
		},
	)

	t.Run(
		"measure is dropped", func(t *testing.T) {
			out, err := ToGeoJSON(NewLineString(XYZM, 0, []Coord{{X: 1, Y: 2, Z: 3, M: 4}, {X: 5, Y: 6, Z: 7, M: 8}}))
			require.NoError(t, err)
			assert.JSONEq(t, `{"type":"LineString","coordinates":[[1,2,3],[5,6,7]]}`, string(out))
		},
	)

	t.Run(
		"collection", func(t *testing.T) {
			c := NewGeometryCollection(XY, 0, []Geometry{
				NewPointXY(1, 2, 0),
				NewPolygon(XY, 0, [][]Coord{square(0, 0, 1)}),
			})
			out, err := ToGeoJSON(c)
			require.NoError(t, err)
			assert.JSONEq(t, `{
				"type": "GeometryCollection",
				"geometries": [
					{"type": "Point", "coordinates": [1, 2]},
					{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
				]
			}`, string(out))
		},
	)
}

func TestToGeoJSONRejectsPointers(t *testing.T) {
	p := NewPointXY(1, 2, 0)
	for _, g := range []Geometry{(*Point)(nil), &p, NewGeometryCollection(XY, 0, []Geometry{(*LineString)(nil)})} {
		_, err := ToGeoJSON(g)
		assert.Error(t, err, "%T", g)
	}
}

func TestFromGeoJSON(t *testing.T) {
	t.Run(
		"3D multi polygon", func(t *testing.T) {
			g, err := FromGeoJSON([]byte(`{
				"type": "MultiPolygon",
				"coordinates": [[[[0,0,1],[1,0,1],[1,1,1],[0,0,1]]]]
			}`), 4326)
			require.NoError(t, err)

			mp, ok := g.(MultiPolygon)
			require.True(t, ok)
			assert.Equal(t, XYZ, mp.Layout)
			assert.Equal(t, 4326, mp.Polygons[0].SRID)
			assert.Equal(t, Coord{X: 1, Y: 0, Z: 1}, mp.Polygons[0].Rings[0][1])
		},
	)

	t.Run(
		"round trip through geojson", func(t *testing.T) {
			in := NewMultiLineString(XY, 3857, [][]Coord{
				{{X: 0, Y: 0}, {X: 1, Y: 1}},
				{{X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 5}},
			})
			data, err := ToGeoJSON(in)
			require.NoError(t, err)

			out, err := FromGeoJSON(data, 3857)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		},
	)

	errCases := map[string]string{
		"unsupported type":   `{"type":"Circle","coordinates":[1,2]}`,
		"mixed dimensions":   `{"type":"LineString","coordinates":[[1,2],[3,4,5]]}`,
		"empty position":     `{"type":"LineString","coordinates":[[],[3,4]]}`,
		"too many ordinates": `{"type":"Point","coordinates":[1,2,3,4]}`,
		"open ring":          `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}`,
		"short line":         `{"type":"LineString","coordinates":[[0,0]]}`,
		"not json":           `{"type":`,
	}
	for name, input := range errCases {
		t.Run(name, func(t *testing.T) {
			_, err := FromGeoJSON([]byte(input), 0)
			assert.Error(t, err)
		})
	}
}
