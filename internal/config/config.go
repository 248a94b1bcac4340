// Package config loads the homectl configuration from YAML with environment
// overrides for deployment-sensitive values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrMissingBroker = errors.New("bridge.broker_uri is required")
	ErrBadLogLevel   = errors.New("log_level must be debug, info, warn or error")
)

// Config is the root configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Discovery DiscoveryConfig `yaml:"discovery"`
	Bridge    BridgeConfig    `yaml:"bridge"`
}

// DiscoveryConfig tunes network discovery.
type DiscoveryConfig struct {
	// ReadTimeout is the per-reply wait during a broadcast scan.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ScanDeadline bounds one whole broadcast scan.
	ScanDeadline time.Duration `yaml:"scan_deadline"`

	// MaxDevices caps how many devices one scan collects.
	MaxDevices int `yaml:"max_devices"`
}

// BridgeConfig configures the MQTT bridge.
type BridgeConfig struct {
	// BrokerURI is the MQTT broker, e.g. "tcp://10.0.0.2:1883".
	// Overridable with HOMECTL_MQTT_URI.
	BrokerURI string `yaml:"broker_uri"`

	// TopicPrefix is the root of the bridge's topic tree. Commands are
	// read from <prefix>/set/<device-ip>, state is published to
	// <prefix>/status/<device-ip>.
	TopicPrefix string `yaml:"topic_prefix"`

	// Username and Password authenticate against the broker.
	// Overridable with HOMECTL_MQTT_USERNAME / HOMECTL_MQTT_PASSWORD.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// DiscoverInterval is how often the bridge rescans the network for
	// devices.
	DiscoverInterval time.Duration `yaml:"discover_interval"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Discovery: DiscoveryConfig{
			ReadTimeout:  2 * time.Second,
			ScanDeadline: 10 * time.Second,
			MaxDevices:   64,
		},
		Bridge: BridgeConfig{
			TopicPrefix:      "homectl",
			DiscoverInterval: 10 * time.Minute,
		},
	}
}

// Load reads a YAML config file on top of the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides deployment-sensitive values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOMECTL_MQTT_URI"); v != "" {
		c.Bridge.BrokerURI = v
	}
	if v := os.Getenv("HOMECTL_MQTT_USERNAME"); v != "" {
		c.Bridge.Username = v
	}
	if v := os.Getenv("HOMECTL_MQTT_PASSWORD"); v != "" {
		c.Bridge.Password = v
	}
	if v := os.Getenv("HOMECTL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrBadLogLevel, c.LogLevel)
	}

	if c.Discovery.MaxDevices < 0 {
		return fmt.Errorf("discovery.max_devices must not be negative, got %d", c.Discovery.MaxDevices)
	}
	return nil
}

// ValidateBridge additionally checks the settings only the bridge needs.
func (c *Config) ValidateBridge() error {
	if c.Bridge.BrokerURI == "" {
		return ErrMissingBroker
	}
	if c.Bridge.DiscoverInterval <= 0 {
		return fmt.Errorf("bridge.discover_interval must be positive, got %s", c.Bridge.DiscoverInterval)
	}
	return nil
}

// SlogLevel maps the configured log level onto log/slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
