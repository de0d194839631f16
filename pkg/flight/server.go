package flight

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"pg-spatial/pkg/column"
	"pg-spatial/pkg/ewkb"
	"pg-spatial/pkg/geoarrow"
	"pg-spatial/pkg/geom"
	"pg-spatial/pkg/registry"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const (
	OperationDecode = "decode"
	OperationEncode = "encode"

	GeoJSONColumn = "GEOJSON"
	LayoutColumn  = "LAYOUT"
	ErrorColumn   = "ERROR"
)

// DecodeSchema is the layout of decode results. ERROR is null for rows that
// decoded cleanly, and the other columns are null for rows that did not.
var DecodeSchema = arrow.NewSchema(
	[]arrow.Field{
		{Name: geoarrow.SRIDColumn, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: geoarrow.TypeColumn, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: LayoutColumn, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: GeoJSONColumn, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: ErrorColumn, Type: arrow.BinaryTypes.String, Nullable: true},
	},
	nil,
)

// Action is the JSON command sent in the first message of an exchange.
type Action struct {
	Operation string `json:"operation"`
	Type      string `json:"type,omitempty"`
	SRID      int    `json:"srid,omitempty"`
}

type SpatialFlightServer struct {
	flight.BaseFlightServer
	registry *registry.Registry
	logger   *slog.Logger
}

func NewSpatialFlightServer(reg *registry.Registry, logger *slog.Logger) *SpatialFlightServer {
	if reg == nil {
		reg = registry.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SpatialFlightServer{
		registry: reg,
		logger:   logger,
	}
}

// DoExchange reads an Action from the first message, then streams record
// batches in and results out.
func (s *SpatialFlightServer) DoExchange(stream flight.FlightService_DoExchangeServer) error {
	desc, err := stream.Recv()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	action, err := parseAction(desc)
	if err != nil {
		return err
	}

	s.logger.Debug("flight exchange", "operation", action.Operation, "type", action.Type)

	switch action.Operation {
	case OperationDecode:
		return s.handleDecode(stream, action)
	case OperationEncode:
		return s.handleEncode(stream, action)
	default:
		return fmt.Errorf("unsupported operation: %s", action.Operation)
	}
}

// parseAction reads the action from AppMetadata, falling back to the
// descriptor command. A non-JSON payload is taken as the operation name.
func parseAction(desc *flight.FlightData) (Action, error) {
	var raw []byte
	switch {
	case len(desc.AppMetadata) > 0:
		raw = desc.AppMetadata
	case desc.FlightDescriptor != nil && len(desc.FlightDescriptor.Cmd) > 0:
		raw = desc.FlightDescriptor.Cmd
	default:
		return Action{}, fmt.Errorf("missing operation")
	}

	var action Action
	if err := json.Unmarshal(raw, &action); err == nil && action.Operation != "" {
		return action, nil
	}
	return Action{Operation: string(raw)}, nil
}

func (s *SpatialFlightServer) handleDecode(stream flight.FlightService_DoExchangeServer, action Action) error {
	var spec *column.Spec
	if action.Type != "" {
		resolved, err := s.registry.Resolve(action.Type)
		if err != nil {
			return err
		}
		spec = &resolved
	}

	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(DecodeSchema))
	defer writer.Close()

	pool := memory.NewGoAllocator()
	for reader.Next() {
		out, err := DecodeRecord(pool, reader.RecordBatch(), spec)
		if err != nil {
			return err
		}
		err = writer.Write(out)
		out.Release()
		if err != nil {
			return err
		}
	}

	return reader.Err()
}

func (s *SpatialFlightServer) handleEncode(stream flight.FlightService_DoExchangeServer, action Action) error {
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(geoarrow.Schema))
	defer writer.Close()

	for reader.Next() {
		geoms, err := geometriesFromGeoJSON(reader.RecordBatch(), action.SRID)
		if err != nil {
			return err
		}

		batch, err := geoarrow.NewBatch(geoms)
		if err != nil {
			return err
		}
		for _, rec := range batch.GetRecords() {
			if err := writer.Write(rec); err != nil {
				batch.Release()
				return err
			}
		}
		batch.Release()
	}

	return reader.Err()
}

// DecodeRecord decodes the GEOM column of rec into a DecodeSchema record.
// Per-row decode failures are reported in the ERROR column.
func DecodeRecord(pool memory.Allocator, rec arrow.RecordBatch, spec *column.Spec) (arrow.RecordBatch, error) {
	indices := rec.Schema().FieldIndices(geoarrow.GeomColumn)
	if len(indices) == 0 {
		return nil, fmt.Errorf("required column %s not found in records", geoarrow.GeomColumn)
	}
	col, ok := rec.Column(indices[0]).(*array.Binary)
	if !ok {
		return nil, fmt.Errorf("column %s is %s, expected binary", geoarrow.GeomColumn, rec.Column(indices[0]).DataType())
	}

	rb := array.NewRecordBuilder(pool, DecodeSchema)
	defer rb.Release()

	sridB := rb.Field(0).(*array.Int64Builder)
	typeB := rb.Field(1).(*array.StringBuilder)
	layoutB := rb.Field(2).(*array.StringBuilder)
	jsonB := rb.Field(3).(*array.StringBuilder)
	errB := rb.Field(4).(*array.StringBuilder)

	fail := func(msg string) {
		sridB.AppendNull()
		typeB.AppendNull()
		layoutB.AppendNull()
		jsonB.AppendNull()
		errB.Append(msg)
	}

	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			fail("null geometry")
			continue
		}

		var (
			g   geom.Geometry
			err error
		)
		if spec != nil {
			g, err = ewkb.DecodeColumn(col.Value(i), *spec)
		} else {
			g, err = ewkb.Decode(col.Value(i))
		}
		if err != nil {
			fail(err.Error())
			continue
		}

		geoJSON, err := geom.ToGeoJSON(g)
		if err != nil {
			fail(err.Error())
			continue
		}

		sridB.Append(int64(g.GetSRID()))
		typeB.Append(g.GetGeometryType().TypeName())
		layoutB.Append(g.GetLayout().String())
		jsonB.Append(string(geoJSON))
		errB.AppendNull()
	}

	return rb.NewRecordBatch(), nil
}

// geometriesFromGeoJSON parses the GEOJSON column. A SRID column, when
// present, overrides the default SRID per row.
func geometriesFromGeoJSON(rec arrow.RecordBatch, defaultSRID int) ([]geom.Geometry, error) {
	schema := rec.Schema()
	indices := schema.FieldIndices(GeoJSONColumn)
	if len(indices) == 0 {
		return nil, fmt.Errorf("required column %s not found in records", GeoJSONColumn)
	}
	col, ok := rec.Column(indices[0]).(*array.String)
	if !ok {
		return nil, fmt.Errorf("column %s is %s, expected string", GeoJSONColumn, rec.Column(indices[0]).DataType())
	}

	var srids *array.Int64
	if idx := schema.FieldIndices(geoarrow.SRIDColumn); len(idx) > 0 {
		srids, ok = rec.Column(idx[0]).(*array.Int64)
		if !ok {
			return nil, fmt.Errorf("column %s is %s, expected int64", geoarrow.SRIDColumn, rec.Column(idx[0]).DataType())
		}
	}

	out := make([]geom.Geometry, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			return nil, fmt.Errorf("row %d: null geometry", i)
		}

		srid := defaultSRID
		if srids != nil && !srids.IsNull(i) {
			srid = int(srids.Value(i))
		}

		g, err := geom.FromGeoJSON([]byte(col.Value(i)), srid)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}
