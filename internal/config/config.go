// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables named by the
// envconfig tags.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// JWTSecret is the HS256 key shared with the identity service.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// The default is the Vite dev server. Set CORS_ORIGINS to a
	// comma-separated list to override.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; it
// never overrides variables that are already set. A variable set to an empty
// string is treated as unset, so it falls back to its default or is reported
// as missing.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	unsetEmpty(&cfg)
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, errors.New("config.Load: MAX_BODY_BYTES must be a positive integer")
	}
	return cfg, nil
}

// unsetEmpty removes blank variables named by spec's envconfig tags from the
// environment. envconfig treats a set-but-empty variable as present.
func unsetEmpty(spec any) {
	t := reflect.TypeOf(spec).Elem()
	for i := range t.NumField() {
		key := t.Field(i).Tag.Get("envconfig")
		if key == "" {
			continue
		}
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			_ = os.Unsetenv(key)
		}
	}
}

// trimAll trims every entry and drops the empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
