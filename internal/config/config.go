// Package config holds the server settings shared by the command line and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// EnvPrefix prefixes every environment variable read by the binary.
const EnvPrefix = "MOVIEGRAPH_"

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Config struct {
	Addr string
	Path string
	// Seed is a YAML or JSON seed file. Empty means the built-in seed.
	Seed string

	Introspection bool
	GraphiQL      bool
	Pretty        bool
	Timeout       time.Duration
	MaxBodyBytes  int64
	CORSOrigins   []string
	CacheSize     int

	OTelEndpoint string
	OTelService  string

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Addr:          ":5000",
		Path:          "/graphql",
		Introspection: true,
		GraphiQL:      true,
		Timeout:       10 * time.Second,
		MaxBodyBytes:  1 << 20,
		CacheSize:     256,
		OTelService:   "moviegraph",
		LogLevel:      "info",
		LogFormat:     LogFormatConsole,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", c.Path))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max body bytes %d must not be negative", c.MaxBodyBytes))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache size %d must not be negative", c.CacheSize))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log format %q must be %s or %s", c.LogFormat, LogFormatConsole, LogFormatJSON))
	}
	if c.OTelEndpoint != "" && c.OTelService == "" {
		errs = append(errs, errors.New("otel service name is required when an endpoint is set"))
	}
	return errors.Join(errs...)
}

// Env returns the environment variable name for a setting, e.g. "cache-size"
// becomes MOVIEGRAPH_CACHE_SIZE.
func Env(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// LoadDotEnv loads the given files (".env" when none) into the process
// environment. Variables already set win over file values. Missing files are
// ignored; malformed ones are not.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
