package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide tunables loaded once at startup and read-only
// afterward: ghost depth defaults, transport compression/backoff policy,
// and log level. cmd/meshd reads LogLevel, TransportDepth and StatusAddr;
// GhostDepth, TransportRetries and CompressThreshold are not read by any
// package (transport uses its own fixed 5 retries and 4096-byte threshold).
type Config struct {
	LogLevel          string `yaml:"log_level"`
	GhostDepth        int    `yaml:"ghost_depth"`
	TransportDepth    int    `yaml:"transport_stream_depth"`
	TransportRetries  uint64 `yaml:"transport_retries"`
	CompressThreshold int    `yaml:"compress_threshold_bytes"`
	StatusAddr        string `yaml:"status_addr"`
}

// Default returns the configuration a freshly started daemon uses absent a
// config file.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		GhostDepth:        3,
		TransportDepth:    64,
		TransportRetries:  5,
		CompressThreshold: 4096,
		StatusAddr:        ":8086",
	}
}

// LoadConfig reads a YAML config file, defaulting any field the file omits.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("services: read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("services: parse config: %w", err)
	}
	return cfg, nil
}
