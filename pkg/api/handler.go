package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"pg-spatial/pkg/column"
	"pg-spatial/pkg/ewkb"
	"pg-spatial/pkg/geom"
	"pg-spatial/pkg/introspect"
	"pg-spatial/pkg/literal"
	"pg-spatial/pkg/registry"
)

// maxBodyBytes bounds request bodies; EWKB hex doubles the geometry size.
const maxBodyBytes = 16 << 20

// APIHandler handles REST API requests for the spatial codec
type APIHandler struct {
	registry *registry.Registry
	db       *sql.DB
	logger   *slog.Logger
}

// NewAPIHandler creates a new APIHandler. A nil registry means the default
// one; a nil db disables the columns endpoint.
func NewAPIHandler(reg *registry.Registry, db *sql.DB, logger *slog.Logger) *APIHandler {
	if reg == nil {
		reg = registry.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		registry: reg,
		db:       db,
		logger:   logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeRequest carries a hex EWKB value and, optionally, the registered
// column type it must conform to.
type DecodeRequest struct {
	EWKB string `json:"ewkb"`
	Type string `json:"type,omitempty"`
}

type DecodeResponse struct {
	Type     string          `json:"type"`
	SRID     int             `json:"srid"`
	Layout   string          `json:"layout"`
	Envelope *geom.Box       `json:"envelope,omitempty"`
	GeoJSON  json.RawMessage `json:"geojson"`
}

// EncodeRequest carries a GeoJSON geometry. EmitSRID defaults to true.
type EncodeRequest struct {
	Geometry json.RawMessage `json:"geometry"`
	SRID     int             `json:"srid"`
	EmitSRID *bool           `json:"emit_srid,omitempty"`
}

type EncodeResponse struct {
	EWKB    string `json:"ewkb"`
	Literal string `json:"literal"`
}

type SpecResponse struct {
	column.Spec
	SQLType string `json:"sql_type"`
}

// DecodeHandler handles POST requests to decode hex EWKB
func (h *APIHandler) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	var req DecodeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EWKB == "" {
		h.sendError(w, http.StatusBadRequest, "missing ewkb")
		return
	}

	b, err := ewkb.FromHexString(req.EWKB)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	var g geom.Geometry
	if req.Type != "" {
		spec, err := h.registry.Resolve(req.Type)
		if err != nil {
			h.sendError(w, http.StatusNotFound, err.Error())
			return
		}
		g, err = ewkb.DecodeColumn(b, spec)
		if err != nil {
			h.sendError(w, statusFor(err), err.Error())
			return
		}
	} else {
		g, err = ewkb.Decode(b)
		if err != nil {
			h.sendError(w, statusFor(err), err.Error())
			return
		}
	}

	geoJSON, err := geom.ToGeoJSON(g)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to serialize result to GeoJSON: %v", err))
		return
	}

	resp := DecodeResponse{
		Type:    g.GetGeometryType().TypeName(),
		SRID:    g.GetSRID(),
		Layout:  g.GetLayout().String(),
		GeoJSON: geoJSON,
	}
	if box, ok := geom.Envelope(g); ok {
		resp.Envelope = &box
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// EncodeHandler handles POST requests to encode a GeoJSON geometry
func (h *APIHandler) EncodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "only POST method is allowed")
		return
	}

	var req EncodeRequest
	if err := h.readJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Geometry) == 0 {
		h.sendError(w, http.StatusBadRequest, "missing geometry")
		return
	}

	g, err := geom.FromGeoJSON(req.Geometry, req.SRID)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("invalid GeoJSON: %v", err))
		return
	}

	emitSRID := req.EmitSRID == nil || *req.EmitSRID
	hex, err := ewkb.EncodeHex(g, emitSRID)
	if err != nil {
		h.sendError(w, statusFor(err), err.Error())
		return
	}

	lit, err := literal.Literal(g)
	if err != nil {
		h.sendError(w, statusFor(err), err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, EncodeResponse{EWKB: hex, Literal: lit})
}

// IntrospectHandler parses the metadata query parameter into a column spec
func (h *APIHandler) IntrospectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "only GET method is allowed")
		return
	}

	q := r.URL.Query()
	geographic := false
	if v := q.Get("geographic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, fmt.Sprintf("invalid geographic flag: %v", err))
			return
		}
		geographic = b
	}

	spec, err := introspect.ParseColumn(q.Get("metadata"), geographic)
	if err != nil {
		h.sendError(w, statusFor(err), err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, SpecResponse{Spec: spec, SQLType: spec.SQLType()})
}

// TypesHandler lists the registered type names
func (h *APIHandler) TypesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.registry.Names())
}

// TypeHandler resolves one registered type name
func (h *APIHandler) TypeHandler(w http.ResponseWriter, r *http.Request) {
	spec, err := h.registry.Resolve(r.PathValue("name"))
	if err != nil {
		h.sendError(w, statusFor(err), err.Error())
		return
	}
	h.sendJSON(w, http.StatusOK, SpecResponse{Spec: spec, SQLType: spec.SQLType()})
}

// ColumnsHandler lists the spatial columns of the table query parameter
func (h *APIHandler) ColumnsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "only GET method is allowed")
		return
	}
	if h.db == nil {
		h.sendError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	table := r.URL.Query().Get("table")
	if table == "" {
		h.sendError(w, http.StatusBadRequest, "missing table")
		return
	}

	cols, err := introspect.SpatialColumns(r.Context(), h.db, table)
	if err != nil {
		h.sendError(w, statusFor(err), err.Error())
		return
	}
	if cols == nil {
		cols = []introspect.Column{}
	}

	h.sendJSON(w, http.StatusOK, cols)
}

func (h *APIHandler) readJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrUnknownType):
		return http.StatusNotFound
	case errors.Is(err, ewkb.ErrMalformedInput),
		errors.Is(err, introspect.ErrMalformedMetadata),
		errors.Is(err, geom.ErrInvalidGeometry),
		errors.Is(err, literal.ErrUnsupportedLiteral):
		return http.StatusBadRequest
	case errors.Is(err, column.ErrNonConforming):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// sendError sends an error response as JSON
func (h *APIHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", statusCode, "error", message)
	} else {
		h.logger.Debug("request rejected", "status", statusCode, "error", message)
	}
	h.sendJSON(w, statusCode, ErrorResponse{Error: message})
}
