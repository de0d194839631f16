package flight

import (
	"fmt"
	"log/slog"

	"pg-spatial/pkg/registry"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc"
)

func NewFlightServer(reg *registry.Registry, logger *slog.Logger, opts ...grpc.ServerOption) flight.Server {
	server := flight.NewServerWithMiddleware(nil, opts...)
	server.RegisterFlightService(NewSpatialFlightServer(reg, logger))
	return server
}

// StartFlightServer serves until the server is shut down.
func StartFlightServer(server flight.Server, port int, logger *slog.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	if err := server.Init(addr); err != nil {
		return err
	}
	logger.Info("starting Flight server", "addr", server.Addr().String())
	return server.Serve()
}
