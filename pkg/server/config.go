package server

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"
)

// envPrefix scopes environment overrides, HELMWIRE_SERVER_*.
const envPrefix = "helmwire_server"

// Config holds host server configuration.
type Config struct {
	// Listen address and port.
	Address string `envconfig:"ADDRESS"`
	Port    int    `envconfig:"PORT"`

	// Token bucket rate limiting.
	RateLimit      rate.Limit `envconfig:"RATE_LIMIT"`
	RateLimitBurst int        `envconfig:"RATE_LIMIT_BURST"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES"`

	// Timeouts.
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`

	// Logging.
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns the default configuration with any
// HELMWIRE_SERVER_* environment overrides applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Address:         "",
		Port:            8080,
		RateLimit:       100, // 100 req/s
		RateLimitBurst:  200, // burst of 200
		MaxBodyBytes:    1 << 20,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        slog.LevelInfo.String(),
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		slog.Warn("ignoring invalid environment overrides", "error", err)
	}

	return cfg
}
