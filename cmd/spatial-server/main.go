package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pg-spatial/pkg/api"
	"pg-spatial/pkg/config"
	"pg-spatial/pkg/flight"
	"pg-spatial/pkg/logging"
	"pg-spatial/pkg/registry"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, errs := config.Load(os.Getenv("SPATIAL_CONFIG"))
	if len(errs) > 0 {
		for _, err := range errs {
			log.Printf("config: %v", err)
		}
		os.Exit(1)
	}

	logger, err := logging.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to configure logging:", err)
	}

	summary := make([]any, 0, 2*len(cfg.LogSummary()))
	for k, v := range cfg.LogSummary() {
		summary = append(summary, k, v)
	}
	logger.Info("configuration loaded", summary...)

	reg := registry.Default().WithLogger(logger)
	if err := cfg.Apply(reg); err != nil {
		logger.Error("failed to register configured types", "error", err)
		os.Exit(1)
	}

	// Database setup (Postgres), optional
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	apiServer := api.NewAPIServer(reg, db, logger, cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("REST API server error", "error", err)
			stop()
		}
	}()

	// Start Flight server
	if cfg.FlightPort != 0 {
		flightServer := flight.NewFlightServer(reg, logger)
		go func() {
			if err := flight.StartFlightServer(flightServer, cfg.FlightPort, logger); err != nil {
				logger.Error("Flight server error", "error", err)
				stop()
			}
		}()
		defer flightServer.Shutdown()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
