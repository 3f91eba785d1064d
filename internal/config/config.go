// Package config loads the YAML-backed startup configuration for
// aesdsocket: listen address, history backend and capacity, and logging
// level, mirroring the LoadConfig/DefaultConfig shape used throughout this
// corpus's command-line front ends.
package config

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/logging"
)

// Backend selects a history.Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
)

// Config is the top-level aesdsocket configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	History HistoryConfig  `yaml:"history"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig configures the listener.
type ServerConfig struct {
	// ListenAddr is the TCP address to bind.
	ListenAddr string `yaml:"listen_addr"`
	// MaxRxBuffer caps a connection's receive buffer growth. Zero means
	// unbounded, the original design's behavior.
	MaxRxBuffer datasize.ByteSize `yaml:"max_rx_buffer"`
}

// HistoryConfig configures the bounded command history.
type HistoryConfig struct {
	// Backend selects between the in-memory ring and the file-backed ring.
	Backend Backend `yaml:"backend"`
	// Capacity is N, the number of most-recent commands retained.
	Capacity int `yaml:"capacity"`
	// FilePath is the backing file path, used only when Backend is
	// BackendFile.
	FilePath string `yaml:"file_path"`
}

// Default returns the compiled-in configuration used when no -c/--config
// path is given, matching the original CLI's "zero args = foreground with
// no config file" default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:  ":9000",
			MaxRxBuffer: 0,
		},
		History: HistoryConfig{
			Backend:  BackendMemory,
			Capacity: 10,
			FilePath: "/var/tmp/aesdsocketdata",
		},
		Logging: logging.Config{
			Level: zapcore.InfoLevel,
		},
	}
}

// Load reads and parses the YAML configuration at path, applied on top of
// Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if cfg.History.Capacity <= 0 {
		return nil, fmt.Errorf("history.capacity must be positive, got %d", cfg.History.Capacity)
	}
	switch cfg.History.Backend {
	case BackendMemory, BackendFile:
	default:
		return nil, fmt.Errorf("history.backend must be %q or %q, got %q", BackendMemory, BackendFile, cfg.History.Backend)
	}

	return cfg, nil
}
