package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/BioHazard786/diceroom/backend/internal/room"
)

// Config holds the dice server's configuration.
type Config struct {
	Host string `env:"DICEROOM_HOST"`
	Port int    `env:"DICEROOM_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	WriteWait      time.Duration `env:"DICEROOM_WRITE_WAIT"       envDefault:"10s"`
	PongWait       time.Duration `env:"DICEROOM_PONG_WAIT"        envDefault:"60s"`
	PingPeriod     time.Duration `env:"DICEROOM_PING_PERIOD"`
	MaxMessageSize int64         `env:"DICEROOM_MAX_MESSAGE_SIZE" envDefault:"4096"`
	SendBuffer     int           `env:"DICEROOM_SEND_BUFFER"      envDefault:"256"`

	ShutdownTimeout time.Duration `env:"DICEROOM_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the environment. Values from the given
// dotenv files are loaded first but never override variables already set;
// missing files are skipped.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PingPeriod == 0 {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that env parsing cannot.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping period %s must be shorter than pong wait %s", c.PingPeriod, c.PongWait)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("invalid max message size %d", c.MaxMessageSize)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ClientOptions returns the per-connection socket settings.
func (c *Config) ClientOptions() room.Options {
	return room.Options{
		WriteWait:      c.WriteWait,
		PongWait:       c.PongWait,
		PingPeriod:     c.PingPeriod,
		MaxMessageSize: c.MaxMessageSize,
		SendBuffer:     c.SendBuffer,
	}
}
