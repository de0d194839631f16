package geoarrow

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/duckdb/duckdb-go/v2"
)

const viewName = "geoarrow_batch_view"

// Describe renders every geometry as WKT with the DuckDB spatial extension,
// which parses the GEOM column independently of this module's decoder.
func (b *Batch) Describe(ctx context.Context, connector *duckdb.Connector) ([]string, error) {
	if len(b.records) == 0 {
		return nil, fmt.Errorf("records are empty")
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get db connection: %w", err)
	}
	defer conn.Close()

	ar, err := duckdb.NewArrowFromConn(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow from duckdb: %w", err)
	}

	// Closing db would close the connector, which belongs to the caller.
	db := sql.OpenDB(connector)
	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sql connection: %w", err)
	}
	defer sqlConn.Close()

	if err := LoadSpatial(ctx, sqlConn); err != nil {
		return nil, err
	}

	reader, err := array.NewRecordReader(b.records[0].Schema(), b.records)
	if err != nil {
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}
	defer reader.Release()

	release, err := ar.RegisterView(reader, viewName)
	if err != nil {
		return nil, fmt.Errorf("failed to register batch view: %w", err)
	}
	defer release()

	query := fmt.Sprintf(`SELECT ST_AsText(ST_GeomFromHEXEWKB(hex("%s"))) AS wkt FROM %s`, GeomColumn, viewName)
	outReader, err := ar.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to describe geometries: %w", err)
	}
	defer outReader.Release()

	var out []string
	for outReader.Next() {
		col := outReader.RecordBatch().Column(0)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				out = append(out, "")
				continue
			}
			out = append(out, col.ValueStr(i))
		}
	}
	if err := outReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading description: %w", err)
	}

	return out, nil
}

// Execer is satisfied by *sql.DB and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadSpatial installs and loads the DuckDB spatial extension.
func LoadSpatial(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, "INSTALL spatial; LOAD spatial;"); err != nil {
		return fmt.Errorf("failed to load spatial extension: %w", err)
	}
	return nil
}
