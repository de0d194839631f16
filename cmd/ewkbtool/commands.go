package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pg-spatial/pkg/ewkb"
	"pg-spatial/pkg/geoarrow"
	"pg-spatial/pkg/geom"
	"pg-spatial/pkg/introspect"
	"pg-spatial/pkg/literal"

	"github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"
)

// DecodeCmd decodes hex EWKB values
type DecodeCmd struct {
	Type   string   `name:"type" short:"t" help:"Registered column type the values must conform to"`
	Values []string `arg:"" required:"" help:"Hex EWKB values, or - to read one per line from stdin"`
}

func (c *DecodeCmd) Run(g *Globals) error {
	values, err := expandStdin(c.Values, os.Stdin)
	if err != nil {
		return err
	}

	for _, v := range values {
		b, err := ewkb.FromHexString(strings.TrimSpace(v))
		if err != nil {
			return err
		}

		var out geom.Geometry
		if c.Type != "" {
			spec, err := g.Registry.Resolve(c.Type)
			if err != nil {
				return err
			}
			out, err = ewkb.DecodeColumn(b, spec)
			if err != nil {
				return err
			}
		} else {
			out, err = ewkb.Decode(b)
			if err != nil {
				return err
			}
		}

		geoJSON, err := geom.ToGeoJSON(out)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Out, "%s\tSRID=%d\t%s\t%s\n",
			out.GetGeometryType().TypeName(), out.GetSRID(), out.GetLayout(), geoJSON)
	}
	return nil
}

// EncodeCmd encodes a GeoJSON geometry
type EncodeCmd struct {
	SRID    int    `name:"srid" short:"s" help:"SRID of the geometry"`
	NoSRID  bool   `name:"no-srid" help:"Omit the SRID from the encoding"`
	GeoJSON string `arg:"" help:"GeoJSON geometry, or - to read it from stdin"`
}

func (c *EncodeCmd) Run(g *Globals) error {
	gm, err := readGeoJSON(c.GeoJSON, c.SRID)
	if err != nil {
		return err
	}

	hex, err := ewkb.EncodeHex(gm, !c.NoSRID)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, hex)
	return nil
}

// LiteralCmd renders a SQL literal
type LiteralCmd struct {
	SRID     int    `name:"srid" short:"s" help:"SRID of the geometry"`
	Box      bool   `name:"box" help:"Treat the argument as min_x,min_y,max_x,max_y"`
	Prepared string `name:"prepared" enum:"auto,on,off" default:"auto" help:"Emit a $n placeholder and its bind argument: auto follows the config"`
	Value    string `arg:"" help:"GeoJSON geometry, a box with --box, or - to read from stdin"`
}

func (c *LiteralCmd) Run(g *Globals) error {
	var v any
	if c.Box {
		box, err := parseBox(c.Value)
		if err != nil {
			return err
		}
		v = box
	} else {
		gm, err := readGeoJSON(c.Value, c.SRID)
		if err != nil {
			return err
		}
		v = gm
	}

	prepared := g.Config != nil && g.Config.PreparedStatements
	switch c.Prepared {
	case "on":
		prepared = true
	case "off":
		prepared = false
	}

	q := literal.NewQuoter(prepared, literal.PQQuoter{})
	s, err := q.Quote(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, s)

	if pq, ok := q.(*literal.PreparedQuoter); ok {
		for i, arg := range pq.Args() {
			fmt.Fprintf(g.Out, "$%d = %v\n", i+1, arg)
		}
	}
	return nil
}

// IntrospectCmd parses column metadata
type IntrospectCmd struct {
	Geographic bool   `name:"geographic" short:"g" help:"The column's base type is geography"`
	Metadata   string `arg:"" optional:"" help:"Metadata string, e.g. geometry(PointZ,4326)"`
}

func (c *IntrospectCmd) Run(g *Globals) error {
	spec, err := introspect.ParseColumn(c.Metadata, c.Geographic)
	if err != nil {
		return err
	}
	return printJSON(g.Out, map[string]any{
		"spec":     spec,
		"sql_type": spec.SQLType(),
	})
}

// TypesCmd lists registered types or resolves one
type TypesCmd struct {
	Name string `arg:"" optional:"" help:"Type name to resolve"`
}

func (c *TypesCmd) Run(g *Globals) error {
	if c.Name == "" {
		for _, name := range g.Registry.Names() {
			fmt.Fprintln(g.Out, name)
		}
		return nil
	}

	spec, err := g.Registry.Resolve(c.Name)
	if err != nil {
		return err
	}
	return printJSON(g.Out, map[string]any{
		"spec":     spec,
		"sql_type": spec.SQLType(),
	})
}

// ColumnsCmd lists the spatial columns of a table
type ColumnsCmd struct {
	DatabaseURL string        `name:"database-url" env:"DATABASE_URL" help:"PostgreSQL connection URL"`
	Timeout     time.Duration `name:"timeout" default:"30s" help:"Query timeout"`
	Table       string        `arg:"" help:"Table name, optionally schema-qualified"`
}

func (c *ColumnsCmd) Run(g *Globals) error {
	dsn := c.DatabaseURL
	if dsn == "" && g.Config != nil {
		dsn = g.Config.DatabaseURL
	}
	if dsn == "" {
		return fmt.Errorf("no database configured: set DATABASE_URL or --database-url")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cols, err := introspect.SpatialColumns(ctx, db, c.Table)
	if err != nil {
		return err
	}
	for _, col := range cols {
		fmt.Fprintf(g.Out, "%s\t%s\n", col.Name, col.Spec.SQLType())
	}
	return nil
}

// ExportCmd writes geometries to Parquet
type ExportCmd struct {
	Output   string   `name:"output" short:"o" required:"" type:"path" help:"Parquet file to write"`
	Describe bool     `name:"describe" help:"Print each geometry as WKT through DuckDB spatial"`
	Values   []string `arg:"" required:"" help:"Hex EWKB values, or - to read one per line from stdin"`
}

func (c *ExportCmd) Run(g *Globals) error {
	values, err := expandStdin(c.Values, os.Stdin)
	if err != nil {
		return err
	}

	geoms := make([]geom.Geometry, 0, len(values))
	for _, v := range values {
		gm, err := ewkb.DecodeHex(v)
		if err != nil {
			return err
		}
		geoms = append(geoms, gm)
	}

	batch, err := geoarrow.NewBatch(geoms)
	if err != nil {
		return err
	}
	defer batch.Release()

	if err := batch.WriteParquet(c.Output); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "wrote %d geometries to %s\n", batch.Len(), c.Output)

	if !c.Describe {
		return nil
	}

	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	defer connector.Close()

	wkt, err := batch.Describe(context.Background(), connector)
	if err != nil {
		return err
	}
	for _, s := range wkt {
		fmt.Fprintln(g.Out, s)
	}
	return nil
}

// expandStdin replaces a lone "-" with the non-empty lines of r.
func expandStdin(values []string, r io.Reader) ([]string, error) {
	if len(values) != 1 || values[0] != "-" {
		return values, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func readGeoJSON(arg string, srid int) (geom.Geometry, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	return geom.FromGeoJSON(data, srid)
}

func parseBox(s string) (geom.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Box{}, fmt.Errorf("box must be min_x,min_y,max_x,max_y, got %q", s)
	}

	var vals [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Box{}, fmt.Errorf("box ordinate %d: %w", i, err)
		}
		vals[i] = f
	}
	return geom.Box{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
