package main

import (
	"bufio"
	"strings"
	"testing"
)

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"separate flags", "example.com", 9000, "example.com", 9000, false},
		{"port embedded in host", "example.com:9000", 8080, "example.com", 9000, false},
		{"default port", "127.0.0.1", 8080, "127.0.0.1", 8080, false},
		{"bad embedded port", "example.com:what", 8080, "", 0, true},
		{"second colon lands in the port", "example.com:90:00", 8080, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := splitHostPort(tt.host, tt.port)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitHostPort() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("splitHostPort() = (%q, %d), want (%q, %d)", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestServerURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{"hostname", "example.com", 9000, "http://example.com:9000/v2/websocket"},
		{"loopback", "127.0.0.1", 8080, "http://127.0.0.1:8080/v2/websocket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serverURL(tt.host, tt.port); got != tt.want {
				t.Errorf("serverURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPromptLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain line", "alice:token\n", "alice:token"},
		{"surrounding whitespace stripped", "  room7:general  \n", "room7:general"},
		{"line without trailing newline", "alice:token", "alice:token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			if got := promptLine(r, false, "ignored: "); got != tt.want {
				t.Errorf("promptLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
