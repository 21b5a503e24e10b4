/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the booking engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize the store (SQLite or PostgreSQL)
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -driver  Store driver: sqlite or postgres (default: sqlite)
  -db      SQLite database path (default: bookings.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  DATABASE_URL  PostgreSQL connection string (required with -driver=postgres);
                loaded from .env when present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/bookings.db"

  # Run against PostgreSQL
  DATABASE_URL="postgres://localhost/bookings?sslmode=disable" ./server -driver=postgres

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite, store/postgres: Database implementations
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/island/booking-engine/api"
	"github.com/island/booking-engine/booking"
	"github.com/island/booking-engine/store/postgres"
	"github.com/island/booking-engine/store/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	// Flags; .env supplies DATABASE_URL when present.
	_ = godotenv.Load()
	port := flag.Int("port", 8080, "HTTP server port")
	driver := flag.String("driver", "sqlite", "store driver: sqlite or postgres")
	dbPath := flag.String("db", "bookings.db", "SQLite database path")
	flag.Parse()

	// Initialize store
	var (
		store  booking.TxStore
		closer io.Closer
	)
	switch *driver {
	case "sqlite":
		s, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store, closer = s, s
	case "postgres":
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			log.Fatal("DATABASE_URL is required with -driver=postgres")
		}
		s, err := postgres.New(url)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store, closer = s, s
	default:
		log.Fatalf("Unknown driver %q (use sqlite or postgres)", *driver)
	}
	defer closer.Close()

	// Create router
	router := api.NewRouter(api.NewHandler(store))

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
