package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amietti/hubline/internal/server"
)

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8080", "Address to listen on (e.g., :8080)")
	dbPath := flag.String("db", ":memory:", "Path to the message database (a file path persists it)")
	pingInterval := flag.Duration("ping-interval", 30*time.Second, "Interval between server pings (0 disables)")
	flag.Parse()

	store, err := server.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open message store: %v", err)
	}
	defer store.Close()

	srv := server.New(server.Config{
		Addr:         *addr,
		Store:        store,
		PingInterval: *pingInterval,
	})

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s...", *addr)
		errChan <- srv.Start()
	}()

	// Wait for either error or shutdown signal
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		srv.Stop()
	}

	log.Println("Server stopped")
}
