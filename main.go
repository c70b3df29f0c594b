// Command pointbuffer-server exposes the point buffer pipeline and its run
// history as a JSON API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cumberland-gis/pointbuffer/internal/api"
	"github.com/cumberland-gis/pointbuffer/internal/config"
	"github.com/cumberland-gis/pointbuffer/internal/db"
	"github.com/cumberland-gis/pointbuffer/internal/geoproc"
	"github.com/cumberland-gis/pointbuffer/internal/spatial"
)

var (
	configFile = flag.String("config", "", "Optional JSON config file")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbFile     = flag.String("db", "", "Run history database file (overrides config)")
	outDir     = flag.String("out-dir", "", "Confine artifact paths to this directory (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dbFile != "" {
		cfg.DBFile = *dbFile
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if cfg.Listen == "" {
		log.Fatal("Listen address is required")
	}

	transformer, err := spatial.NewTransformer(spatial.WGS84, spatial.PAStatePlaneSouth)
	if err != nil {
		log.Fatalf("failed to create projection transformer: %v", err)
	}
	defer transformer.Close()

	database, err := db.NewDB(cfg.DBFile)
	if err != nil {
		log.Fatalf("failed to open run history database: %v", err)
	}
	defer database.Close()

	// The PROJ handle is not safe for concurrent handlers.
	runner := geoproc.NewRunner(spatial.NewLockedProjector(transformer))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	apiMux := api.NewServer(runner, database, api.Options{
		OutDir:      cfg.OutDir,
		StepTimeout: cfg.StepTimeout,
	}).ServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	log.Printf("listening on %s", cfg.Listen)

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}
