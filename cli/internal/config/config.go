package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Default configuration values
const (
	DefaultServer = "ws://localhost:8080/ws"
)

// ErrNoName is returned when no player name is given by flag or environment.
var ErrNoName = errors.New("player name is required (use --name or DICEROOM_NAME)")

// Config holds application configuration
type Config struct {
	// ServerURL is the websocket endpoint of the dice server
	ServerURL string

	// Name is sent in the Name header and shown to the other player
	Name string
}

// Options for loading config with CLI flag overrides
type Options struct {
	Server string
	Name   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	// Load server: CLI flag > env > default
	server := opts.Server
	if server == "" {
		server = os.Getenv("DICEROOM_SERVER")
	}
	if server == "" {
		server = DefaultServer
	}

	serverURL, err := normalizeServerURL(server)
	if err != nil {
		return nil, err
	}

	// Load name: CLI flag > env, no default
	name := opts.Name
	if name == "" {
		name = os.Getenv("DICEROOM_NAME")
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoName
	}

	return &Config{
		ServerURL: serverURL,
		Name:      name,
	}, nil
}

// normalizeServerURL accepts ws, wss, http and https URLs or a bare host,
// and returns a websocket URL. A missing path defaults to /ws.
func normalizeServerURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL: missing host")
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	return u.String(), nil
}
