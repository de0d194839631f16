package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"pg-spatial/pkg/config"
	"pg-spatial/pkg/geoarrow"
	"pg-spatial/pkg/geom"
	"pg-spatial/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointHex = "0101000020E6100000000000000000F83F0000000000000440"

func globals() (*Globals, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Globals{Registry: registry.New(), Config: &config.Config{}, Out: &buf}, &buf
}

func TestDecodeCmd(t *testing.T) {
	g, out := globals()

	require.NoError(t, (&DecodeCmd{Values: []string{pointHex}}).Run(g))
	assert.Equal(t, "point\tSRID=4326\tXY\t{\"type\":\"Point\",\"coordinates\":[1.5,2.5]}\n", out.String())

	err := (&DecodeCmd{Type: "line_string", Values: []string{pointHex}}).Run(g)
	assert.Error(t, err)

	err = (&DecodeCmd{Values: []string{pointHex[:10]}}).Run(g)
	assert.Error(t, err)
}

func TestEncodeCmd(t *testing.T) {
	g, out := globals()

	require.NoError(t, (&EncodeCmd{SRID: 4326, GeoJSON: `{"type":"Point","coordinates":[1.5,2.5]}`}).Run(g))
	assert.Equal(t, pointHex+"\n", out.String())

	out.Reset()
	require.NoError(t, (&EncodeCmd{SRID: 4326, NoSRID: true, GeoJSON: `{"type":"Point","coordinates":[1.5,2.5]}`}).Run(g))
	assert.Equal(t, "0101000000000000000000F83F0000000000000440\n", out.String())
}

func TestLiteralCmd(t *testing.T) {
	g, out := globals()

	require.NoError(t, (&LiteralCmd{SRID: 4326, Prepared: "auto", Value: `{"type":"Point","coordinates":[1.5,2.5]}`}).Run(g))
	assert.Equal(t, "'"+pointHex+"'\n", out.String())

	out.Reset()
	require.NoError(t, (&LiteralCmd{Box: true, Prepared: "off", Value: "1, 2, 3.5, 4"}).Run(g))
	assert.Equal(t, "'1,2,3.5,4'::box\n", out.String())

	out.Reset()
	g.Config.PreparedStatements = true
	require.NoError(t, (&LiteralCmd{Box: true, Prepared: "auto", Value: "0,0,1,1"}).Run(g))
	assert.Equal(t, "$1::box\n$1 = 0,0,1,1\n", out.String())

	assert.Error(t, (&LiteralCmd{Box: true, Value: "0,0,1"}).Run(g))
}

func TestIntrospectAndTypesCmd(t *testing.T) {
	g, out := globals()

	require.NoError(t, (&IntrospectCmd{Metadata: "geometry(PointZ,4326)"}).Run(g))
	assert.Contains(t, out.String(), `"sql_type": "geometry(PointZ,4326)"`)

	out.Reset()
	require.NoError(t, (&TypesCmd{}).Run(g))
	assert.Contains(t, strings.Split(out.String(), "\n"), "geography")

	out.Reset()
	require.NoError(t, (&TypesCmd{Name: "geography"}).Run(g))
	assert.Contains(t, out.String(), `"geographic": true`)

	assert.ErrorIs(t, (&TypesCmd{Name: "nonexistent"}).Run(g), registry.ErrUnknownType)
}

func TestColumnsCmdWithoutDatabase(t *testing.T) {
	g, _ := globals()
	assert.Error(t, (&ColumnsCmd{Table: "roads"}).Run(g))
}

func TestExportCmd(t *testing.T) {
	g, out := globals()
	path := filepath.Join(t.TempDir(), "out.parquet")

	require.NoError(t, (&ExportCmd{Output: path, Values: []string{pointHex}}).Run(g))
	assert.Contains(t, out.String(), "wrote 1 geometries")

	b, err := geoarrow.ReadParquet(path)
	require.NoError(t, err)
	defer b.Release()

	geoms, err := b.Geometries()
	require.NoError(t, err)
	assert.Equal(t, []geom.Geometry{geom.NewPointXY(1.5, 2.5, 4326)}, geoms)
}

func TestExpandStdin(t *testing.T) {
	got, err := expandStdin([]string{"-"}, strings.NewReader("AA\n\n BB \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AA", "BB"}, got)

	got, err = expandStdin([]string{"AA", "-"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AA", "-"}, got)
}
