package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/amietti/hubline/internal/client"
)

func main() {
	// Parse command-line flags
	host := flag.String("host", "127.0.0.1", "Server host, optionally with :port")
	port := flag.Int("port", 8080, "Server port")
	flag.Parse()

	h, p, err := splitHostPort(*host, *port)
	if err != nil {
		log.Fatalf("Invalid host: %v", err)
	}
	url := serverURL(h, p)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	reader := bufio.NewReader(os.Stdin)

	auth := promptLine(reader, interactive, "Enter your authentication details (ID:Token): ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := client.Dial(ctx, url, auth)
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}

	target := promptLine(reader, interactive, "Enter the ID of the hub and channel messages should be sent in (hub_id:channel_id): ")

	log.Printf("Connected to %s", conn.RemoteAddr())

	pump := client.NewPump(conn, target, reader, os.Stdout)
	if err := pump.Run(ctx); err != nil {
		log.Printf("Session ended with error: %v", err)
	}

	log.Println("Disconnected from server")
}

// splitHostPort resolves the host flag against the port flag: a port embedded
// in the host wins over the separate flag.
func splitHostPort(host string, port int) (string, int, error) {
	h, p, ok := strings.Cut(host, ":")
	if !ok {
		return host, port, nil
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in host %q: %w", host, err)
	}
	return h, n, nil
}

// serverURL builds the websocket endpoint URL. The http scheme is rewritten
// to ws when dialing.
func serverURL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d/v2/websocket", host, port)
}

// promptLine reads one input line, printing prompt first when the input is an
// interactive terminal.
func promptLine(r *bufio.Reader, interactive bool, prompt string) string {
	if interactive {
		fmt.Print(prompt)
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}
