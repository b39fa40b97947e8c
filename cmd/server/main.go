/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the variable-compensation engine server:
  configuration, dependency wiring, catalog hot reload, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open SQLite store
  3. Load the catalog (YAML file, or built-in defaults)
  4. Start the catalog watcher (when a file is configured)
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: comp.db, ":memory:" works)
  -catalog  Catalog YAML path (default: none, use built-in tables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), stop the watcher, close the database.

EXAMPLES:
  ./server -db=./data/comp.db -catalog=./config/catalog.yaml
  ./server -db=":memory:" -port=3000
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/comp-engine/api"
	"github.com/warp/comp-engine/catalog"
	"github.com/warp/comp-engine/engine"
	"github.com/warp/comp-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "comp.db", "SQLite database path")
	catalogPath := flag.String("catalog", "", "Catalog YAML path (empty = built-in tables)")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	cat := catalog.Default()
	if *catalogPath != "" {
		cat, err = catalog.Load(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}

	handler := api.NewHandler(store, cat, engine.DefaultConfig())
	router := api.NewRouter(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *catalogPath != "" {
		go func() {
			if err := catalog.Watch(ctx, *catalogPath, handler.SetCatalog); err != nil {
				log.Printf("Catalog watcher stopped: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
