/*
main.go - Application entry point

PURPOSE:
  Starts the cashflow projection server: loads configuration, sets up
  logging, wires the budget registry into the HTTP router, and shuts down
  gracefully.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults -> YAML -> CASHFLOW_* env)
  3. Configure logrus
  4. Create the in-memory budget registry and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (default: config.yaml, optional)

ENVIRONMENT:
  CASHFLOW_SERVER_PORT, CASHFLOW_SERVER_ALLOWEDORIGINS (comma-separated),
  CASHFLOW_LOG_LEVEL, CASHFLOW_LOG_FORMAT, CASHFLOW_BREAKDOWN_DEFAULTSTEP,
  CASHFLOW_BREAKDOWN_HORIZONMONTHS

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration loading
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/config"
	"github.com/warp/cashflow-engine/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "YAML configuration path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("Invalid log configuration: %v", err)
	}

	registry := store.NewMemory(cfg.BudgetOptions()...)
	handler := api.NewHandler(registry)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":         cfg.Server.Port,
			"default_step": cfg.Breakdown.DefaultStep,
			"horizon":      cfg.Breakdown.HorizonMonths,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
