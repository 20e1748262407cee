// Package sntpconfig loads the sntpquery CLI's configuration from a YAML
// file, falling back to documented defaults for anything the file omits.
package sntpconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of the CLI's config file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig describes the NTP server to query and how hard to try.
type ServerConfig struct {
	Address           string `yaml:"address"`
	Port              int    `yaml:"port"`
	TimeoutSeconds    float64 `yaml:"timeout_seconds"`
	TimeAllowedSeconds float64 `yaml:"time_allowed_seconds"`
	ClientVersion     uint8  `yaml:"client_version"`
	DataMinimization  bool   `yaml:"data_minimization"`
	TTL               int    `yaml:"ttl"`
}

// LoggingConfig controls the CLI's logrus verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls whether the CLI serves its Prometheus metrics
// over HTTP at /metrics, and on which listen address.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns a Config with the documented out-of-the-box defaults: a
// public pool server, a one-second response timeout, no overall time
// budget, version 4 requests with data minimization enabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          "pool.ntp.org",
			Port:             123,
			TimeoutSeconds:   1.0,
			ClientVersion:    4,
			DataMinimization: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9123",
		},
	}
}

// Load reads and parses the YAML file at path over top of Default,
// so a config file need only specify the fields it wants to override.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sntpconfig: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("sntpconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load, but returns Default() unchanged (with
// a nil error) when path does not exist, so the CLI works with zero
// configuration.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
