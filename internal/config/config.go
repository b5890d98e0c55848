// Package config loads odireg settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sghaida/odireg/registry"
)

// Environment variable names.
const (
	EnvLogLevel  = "ODIREG_LOG_LEVEL"
	EnvLogFormat = "ODIREG_LOG_FORMAT"
	EnvPolicy    = "ODIREG_POLICY"
	EnvManifest  = "ODIREG_MANIFEST"
)

// Config holds the settings shared by the CLI and the registry it builds.
type Config struct {
	LogLevel  string // debug | info | warn | error
	LogFormat string // text | json
	Policy    string // reject | replace
	Manifest  string // path or afs URL of a .hcl, .yaml or .yml manifest
}

// LoadFromEnv reads the ODIREG_* variables, applying defaults, and validates the result.
func LoadFromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load is LoadFromEnv with an injectable lookup, for tests.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		LogLevel:  get(getenv, EnvLogLevel, "info"),
		LogFormat: get(getenv, EnvLogFormat, "text"),
		Policy:    get(getenv, EnvPolicy, registry.Reject.String()),
		Manifest:  getenv(EnvManifest),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown log levels, formats and policies.
func (c Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("config: invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q (want text or json)", c.LogFormat)
	}
	if _, err := registry.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RegistryPolicy returns the parsed duplicate-key policy.
func (c Config) RegistryPolicy() registry.Policy {
	p, _ := registry.ParsePolicy(c.Policy)
	return p
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds a logger writing to w in the configured format and level.
// It does not touch the global logger.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, ok := levels[strings.ToLower(c.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func get(getenv func(string) string, k, def string) string {
	if v := getenv(k); v != "" {
		return v
	}
	return def
}
