// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	Port            int      `yaml:"port"`
	Bind            string   `yaml:"bind"`
	OutputPath      string   `yaml:"output_path"`
	Stylesheet      string   `yaml:"stylesheet"`
	LogLevel        string   `yaml:"log_level"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Port:            8556,
		Bind:            "127.0.0.1",
		OutputPath:      "qr_code.png",
		Stylesheet:      "styles.css",
		LogLevel:        "info",
		ShutdownTimeout: Duration{10 * time.Second},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. A .env file in the working directory
// is loaded into the environment first, then environment variables with the
// QRGEN_ prefix override any file or default values.
func Load(path string) (*Config, error) {
	cfg := defaults()

	// Missing .env is the common case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies QRGEN_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRGEN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QRGEN_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("QRGEN_OUTPUT_PATH"); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv("QRGEN_STYLESHEET"); v != "" {
		cfg.Stylesheet = v
	}
	if v := os.Getenv("QRGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRGEN_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = Duration{d}
		}
	}
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	return nil
}

// Addr is the listen address for the web shell.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// StylesheetPath resolves the optional stylesheet, preferring a copy in a
// resources directory next to the configured path. The returned path may not
// exist; callers treat a missing stylesheet as "use the built-in look".
func (c *Config) StylesheetPath() string {
	if c.Stylesheet == "" || filepath.IsAbs(c.Stylesheet) {
		return c.Stylesheet
	}
	candidate := filepath.Join(filepath.Dir(c.Stylesheet), "resources", filepath.Base(c.Stylesheet))
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return c.Stylesheet
}
