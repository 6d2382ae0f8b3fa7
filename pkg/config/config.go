// Package config loads the connwatch configuration file.
//
// Example file:
//
//	transport: bluez
//	adapter: hci0
//	log_level: info
//	event_log: /var/log/connwatch/events.clog
//	notification:
//	  enabled: true
//	  icon: bluetooth
//	  timeout_seconds: 5
//	mdns:
//	  service: _workstation._tcp
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/connwatch/connwatch/pkg/discovery"
)

// Transport names.
const (
	TransportBlueZ = "bluez"
	TransportMDNS  = "mdns"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete process configuration.
type Config struct {
	// Transport selects the discovery backend: "bluez" or "mdns".
	Transport string `yaml:"transport"`

	// Adapter names the Bluetooth adapter, e.g. "hci0". Empty picks the
	// first adapter.
	Adapter string `yaml:"adapter"`

	MDNS         MDNSConfig         `yaml:"mdns"`
	Notification NotificationConfig `yaml:"notification"`

	// EventLog is the path of the capture file. Empty disables capture.
	EventLog string `yaml:"event_log"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Interactive starts the command console.
	Interactive bool `yaml:"interactive"`
}

// MDNSConfig configures the mDNS transport.
type MDNSConfig struct {
	Service   string `yaml:"service"`
	Domain    string `yaml:"domain"`
	Interface string `yaml:"interface"`
}

// NotificationConfig configures desktop notifications.
type NotificationConfig struct {
	Enabled        bool   `yaml:"enabled"`
	AppName        string `yaml:"app_name"`
	Icon           string `yaml:"icon"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CallTimeoutMS  int    `yaml:"call_timeout_ms"`
}

// Timeout returns how long notifications stay visible.
func (n NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// CallTimeout returns the per-call D-Bus deadline.
func (n NotificationConfig) CallTimeout() time.Duration {
	return time.Duration(n.CallTimeoutMS) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Transport: TransportBlueZ,
		MDNS: MDNSConfig{
			Service: discovery.DefaultService,
			Domain:  discovery.DefaultDomain,
		},
		Notification: NotificationConfig{
			Enabled:        true,
			AppName:        "connwatch",
			Icon:           "bluetooth",
			TimeoutSeconds: 5,
			CallTimeoutMS:  2000,
		},
		LogLevel: "info",
	}
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportBlueZ, TransportMDNS:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Transport == TransportMDNS && c.MDNS.Service == "" {
		return fmt.Errorf("%w: mdns.service is required", ErrInvalidConfig)
	}
	if c.Notification.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: notification.timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.Notification.CallTimeoutMS <= 0 {
		return fmt.Errorf("%w: notification.call_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}
