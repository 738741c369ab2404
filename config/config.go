// Package config loads and validates the scanner configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete scanner configuration
type Config struct {
	InstanceID string        `yaml:"instance_id"`
	Camera     CameraConfig  `yaml:"camera"`
	Scan       ScanConfig    `yaml:"scan"`
	Decoder    DecoderConfig `yaml:"decoder"`
	MQTT       MQTTConfig    `yaml:"mqtt"`
	Server     ServerConfig  `yaml:"server"`
}

// CameraConfig contains camera selection and stream settings
type CameraConfig struct {
	// DeviceID pins an explicit device; empty means pick the default
	DeviceID string `yaml:"device_id"`
	// Facing is the symbolic hint: "front", "back" or "unknown"
	Facing string  `yaml:"facing"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
	// DropDeviceIDWithFacing marks platforms that reject device id and
	// facing hint together
	DropDeviceIDWithFacing bool `yaml:"drop_device_id_with_facing"`
	// WarmupSeconds gates an FPS-stability warmup before scanning (0 = off)
	WarmupSeconds int `yaml:"warmup_s"`
}

// ScanConfig contains decode-loop settings
type ScanConfig struct {
	IntervalMS       int `yaml:"interval_ms"`
	DebounceWindowMS int `yaml:"debounce_window_ms"`
}

// DecoderConfig selects the decode engine
type DecoderConfig struct {
	// Engine is "zxing" (QR + 1D) or "goqr" (QR only)
	Engine string `yaml:"engine"`
	// Mode narrows zxing: "all", "qr", "1d"
	Mode string `yaml:"mode"`
}

// MQTTConfig contains event-publishing settings; empty broker disables it
type MQTTConfig struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
	QoS    byte   `yaml:"qos"`
}

// ServerConfig contains the status HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Load reads, parses and validates a config file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		InstanceID: "scanner-1",
		Camera: CameraConfig{
			Facing: "back",
			Width:  1280,
			Height: 720,
			FPS:    10,
		},
		Scan: ScanConfig{
			IntervalMS:       100,
			DebounceWindowMS: 2500,
		},
		Decoder: DecoderConfig{
			Engine: "zxing",
			Mode:   "all",
		},
		MQTT: MQTTConfig{
			Topic: "scanner/events",
			QoS:   1,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Validate fails fast on configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Camera.Facing {
	case "", "front", "back", "unknown":
	default:
		return fmt.Errorf("config: invalid camera.facing %q (front, back or unknown)", c.Camera.Facing)
	}
	if c.Camera.FPS < 0 || c.Camera.FPS > 30 {
		return fmt.Errorf("config: invalid camera.fps %.2f (must be 0-30)", c.Camera.FPS)
	}
	switch c.Decoder.Engine {
	case "zxing", "goqr":
	default:
		return fmt.Errorf("config: invalid decoder.engine %q (zxing or goqr)", c.Decoder.Engine)
	}
	switch c.Decoder.Mode {
	case "", "all", "qr", "1d":
	default:
		return fmt.Errorf("config: invalid decoder.mode %q (all, qr or 1d)", c.Decoder.Mode)
	}
	if c.Scan.IntervalMS < 0 {
		return fmt.Errorf("config: scan.interval_ms must not be negative")
	}
	if c.Scan.DebounceWindowMS < 0 {
		return fmt.Errorf("config: scan.debounce_window_ms must not be negative")
	}
	return nil
}

// ScanInterval returns the loop interval as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scan.IntervalMS) * time.Millisecond
}

// DebounceWindow returns the debounce window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Scan.DebounceWindowMS) * time.Millisecond
}
