// Package main provides ewkbtool, a command line front end for the EWKB
// codec, the literal generator and the column introspector.
package main

import (
	"fmt"
	"io"
	"os"

	"pg-spatial/pkg/config"
	"pg-spatial/pkg/logging"
	"pg-spatial/pkg/registry"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Globals is bound into every command's Run method.
type Globals struct {
	Registry *registry.Registry
	Config   *config.Config
	Out      io.Writer
}

// CLI defines the command-line interface using Kong
var CLI struct {
	Config  string `name:"config" short:"c" help:"YAML config file with extra spatial types" type:"path"`
	Verbose bool   `name:"verbose" short:"v" help:"Log registry and database activity"`

	Decode     DecodeCmd     `cmd:"" help:"Decode hex EWKB values"`
	Encode     EncodeCmd     `cmd:"" help:"Encode a GeoJSON geometry as hex EWKB"`
	Literal    LiteralCmd    `cmd:"" help:"Render a GeoJSON geometry or a box as a SQL literal"`
	Introspect IntrospectCmd `cmd:"" help:"Parse spatial column metadata such as geometry(PointZ,4326)"`
	Types      TypesCmd      `cmd:"" help:"List or resolve registered spatial types"`
	Columns    ColumnsCmd    `cmd:"" help:"List the spatial columns of a PostgreSQL table"`
	Export     ExportCmd     `cmd:"" help:"Write hex EWKB values to a Parquet file"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ewkbtool"),
		kong.Description("PostGIS EWKB codec and spatial column toolkit"),
		kong.UsageOnError(),
	)

	// .env is optional
	_ = godotenv.Load()

	level := "warn"
	if CLI.Verbose {
		level = "debug"
	}
	if _, err := logging.Init(os.Stderr, level, "text"); err != nil {
		ctx.FatalIfErrorf(err)
	}

	cfg, errs := config.Load(CLI.Config)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", e)
		}
		os.Exit(1)
	}

	reg := registry.New()
	ctx.FatalIfErrorf(cfg.Apply(reg))

	err := ctx.Run(&Globals{Registry: reg, Config: cfg, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
