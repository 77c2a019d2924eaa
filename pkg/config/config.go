package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the gamestate tool configuration
type Config struct {
	Listen  Listen  `yaml:"listen"`
	Capture Capture `yaml:"capture"`
	Record  Record  `yaml:"record"`
	HTTP    HTTP    `yaml:"http"`
	Tracing Tracing `yaml:"tracing"`
	Logging Logging `yaml:"logging"`
}

// Listen configures the UDP socket
type Listen struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	BufferSize int    `yaml:"buffer_size"`
	Echo       bool   `yaml:"echo"`
}

// Capture configures persistence of received datagrams
type Capture struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

// Record configures the append-only recording file. An empty path disables
// recording.
type Record struct {
	Path          string        `yaml:"path"`
	FsyncInterval time.Duration `yaml:"fsync_interval"`
}

// HTTP configures the API, metrics and stream server
type HTTP struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"api_key"`
}

// Tracing configures the OTLP exporter. An empty endpoint disables tracing.
type Tracing struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Listen: Listen{
			Host:       "localhost",
			Port:       2018,
			BufferSize: 4096,
		},
		Capture: Capture{
			DataDir: "./captures",
		},
		Record: Record{
			FsyncInterval: time.Second,
		},
		HTTP: HTTP{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Tracing: Tracing{
			ServiceName: "gamestate",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// ListenAddr returns the UDP address as host:port
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Listen.Host, strconv.Itoa(c.Listen.Port))
}

// HTTPAddr returns the HTTP address as bind:port
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.HTTP.Bind, strconv.Itoa(c.HTTP.Port))
}

// Validate checks the configuration for values the tool cannot run with
func (c *Config) Validate() error {
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port out of range: %d", c.Listen.Port)
	}
	if c.Listen.BufferSize <= 0 {
		return fmt.Errorf("listen.buffer_size must be positive: %d", c.Listen.BufferSize)
	}
	if c.HTTP.Enabled && (c.HTTP.Port < 0 || c.HTTP.Port > 65535) {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.Capture.Enabled && c.Capture.DataDir == "" {
		return fmt.Errorf("capture.data_dir is required when capture is enabled")
	}
	if c.Record.FsyncInterval < 0 {
		return fmt.Errorf("record.fsync_interval must not be negative: %s", c.Record.FsyncInterval)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", c.Logging.Level)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may carry http.api_key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./gamestate.yaml"
	}

	return filepath.Join(homeDir, ".config", "gamestate", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
