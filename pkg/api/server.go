package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pg-spatial/pkg/registry"
)

// APIServer represents the REST API server
type APIServer struct {
	registry *registry.Registry
	db       *sql.DB
	logger   *slog.Logger
	port     int
	server   *http.Server
}

// NewAPIServer creates a new API server instance
func NewAPIServer(reg *registry.Registry, db *sql.DB, logger *slog.Logger, port int) *APIServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIServer{
		registry: reg,
		db:       db,
		logger:   logger,
		port:     port,
	}
}

// Routes builds the request multiplexer.
func (s *APIServer) Routes() http.Handler {
	handler := NewAPIHandler(s.registry, s.db, s.logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/decode", handler.DecodeHandler)
	mux.HandleFunc("/api/v1/encode", handler.EncodeHandler)
	mux.HandleFunc("/api/v1/introspect", handler.IntrospectHandler)
	mux.HandleFunc("/api/v1/columns", handler.ColumnsHandler)
	mux.HandleFunc("GET /api/v1/types", handler.TypesHandler)
	mux.HandleFunc("GET /api/v1/types/{name}", handler.TypeHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}

// Start starts the REST API server
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting REST API server", "port", s.port)
	return s.server.ListenAndServe()
}

// Stop gracefully stops the REST API server
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
