// Package geoarrow moves geometries in and out of Arrow record batches so
// they can be written to Parquet or queried through DuckDB.
package geoarrow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pg-spatial/pkg/ewkb"
	"pg-spatial/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const (
	GeomColumn = "GEOM"
	SRIDColumn = "SRID"
	TypeColumn = "GEOMETRY_TYPE"
)

// Schema is the layout of every batch: EWKB with SRID, the SRID again as
// a plain column wide enough for any uint32 SRID, and the snake_case
// geometry type name.
var Schema = arrow.NewSchema(
	[]arrow.Field{
		{Name: GeomColumn, Type: arrow.BinaryTypes.Binary},
		{Name: SRIDColumn, Type: arrow.PrimitiveTypes.Int64},
		{Name: TypeColumn, Type: arrow.BinaryTypes.String},
	},
	nil,
)

type Batch struct {
	records    []arrow.RecordBatch
	tempDir    string
	sourceFile *string
}

// NewBatch encodes geometries into a single record batch.
func NewBatch(geoms []geom.Geometry) (*Batch, error) {
	pool := memory.NewGoAllocator()

	rb := array.NewRecordBuilder(pool, Schema)
	defer rb.Release()

	geomBuilder := rb.Field(0).(*array.BinaryBuilder)
	sridBuilder := rb.Field(1).(*array.Int64Builder)
	typeBuilder := rb.Field(2).(*array.StringBuilder)

	for i, g := range geoms {
		b, err := ewkb.Encode(g, true)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		geomBuilder.Append(b)
		sridBuilder.Append(int64(g.GetSRID()))
		typeBuilder.Append(g.GetGeometryType().TypeName())
	}

	return &Batch{records: []arrow.RecordBatch{rb.NewRecordBatch()}}, nil
}

// NewBatchFromRecords wraps existing records. The batch takes ownership of
// them and releases them in Release.
func NewBatchFromRecords(records []arrow.RecordBatch) (*Batch, error) {
	for _, rec := range records {
		if len(rec.Schema().FieldIndices(GeomColumn)) == 0 {
			return nil, fmt.Errorf("required column %s not found in records", GeomColumn)
		}
	}
	return &Batch{records: records}, nil
}

// GetRecords returns the arrow record batches
func (b *Batch) GetRecords() []arrow.RecordBatch {
	return b.records
}

// Len is the total row count.
func (b *Batch) Len() int {
	n := 0
	for _, rec := range b.records {
		n += int(rec.NumRows())
	}
	return n
}

// Geometries decodes the GEOM column of every record. Null rows are
// returned as nil.
func (b *Batch) Geometries() ([]geom.Geometry, error) {
	out := make([]geom.Geometry, 0, b.Len())

	for _, rec := range b.records {
		indices := rec.Schema().FieldIndices(GeomColumn)
		if len(indices) == 0 {
			return nil, fmt.Errorf("required column %s not found in records", GeomColumn)
		}

		col, ok := rec.Column(indices[0]).(*array.Binary)
		if !ok {
			return nil, fmt.Errorf("column %s is %s, expected binary", GeomColumn, rec.Column(indices[0]).DataType())
		}

		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				out = append(out, nil)
				continue
			}
			g, err := ewkb.Decode(col.Value(i))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", len(out), err)
			}
			out = append(out, g)
		}
	}

	return out, nil
}

// Release releases the arrow records and cleans up temporary files
func (b *Batch) Release() {
	for _, rec := range b.records {
		rec.Release()
	}
	b.records = nil

	if b.tempDir != "" {
		os.RemoveAll(b.tempDir)
		b.tempDir = ""
		b.sourceFile = nil
	}
}

// Sink the record batches into a parquet file in a temporary directory.
func (b *Batch) Sink() error {
	if len(b.records) == 0 {
		return fmt.Errorf("records are empty")
	}

	tempDir, err := os.MkdirTemp("", "geoarrow_*")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	b.tempDir = tempDir

	filePath := filepath.Join(tempDir, "geometries.parquet")
	if err := b.WriteParquet(filePath); err != nil {
		return err
	}

	b.sourceFile = &filePath
	return nil
}

// GetSourceFile returns the path to the parquet file if materialized
func (b *Batch) GetSourceFile() *string {
	return b.sourceFile
}

// WriteParquet writes the records to a Snappy-compressed parquet file.
func (b *Batch) WriteParquet(path string) error {
	if len(b.records) == 0 {
		return fmt.Errorf("records are empty")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	writer, err := pqarrow.NewFileWriter(
		b.records[0].Schema(),
		f,
		parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, rec := range b.records {
		if err := writer.WriteBuffered(rec); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write record batch: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet loads a parquet file written by Sink or WriteParquet.
func ReadParquet(path string) (*Batch, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{
		BatchSize: 10000,
	}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader for %s: %w", path, err)
	}

	recordReader, err := reader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get record reader for %s: %w", path, err)
	}
	defer recordReader.Release()

	var records []arrow.RecordBatch
	for recordReader.Next() {
		rec := recordReader.RecordBatch()
		rec.Retain()
		records = append(records, rec)
	}
	if err := recordReader.Err(); err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, fmt.Errorf("error reading records from %s: %w", path, err)
	}

	out, err := NewBatchFromRecords(records)
	if err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, err
	}
	return out, nil
}
