// Package config loads the application configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendConfig selects and tunes the native backend.
// Type selects a concrete implementation: "libgphoto2" or "simulator".
type BackendConfig struct {
	Type        string `yaml:"type"`
	LibraryPath string `yaml:"library_path"` // optional override of the shared library path
}

// CameraConfig pins the camera to a USB address.
// Bus and Device 0 mean "first camera the driver claims".
type CameraConfig struct {
	USBBus          int `yaml:"usb_bus"`
	USBDevice       int `yaml:"usb_device"`
	CaptureTimeoutS int `yaml:"capture_timeout_s"` // how long a capture may wait for the new file
}

// DefaultsConfig contains generic parameters (output, logging).
type DefaultsConfig struct {
	DownloadDir string `yaml:"download_dir"` // where captured files land
	DebugLevel  int    `yaml:"debug_level"`  // debug level 0-4 (0=off, 1-2=info, 3=debug, 4=trace)
}

// Config aggregates all application configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Camera   CameraConfig   `yaml:"camera"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() error {
	// Basic validation
	if cfg.Backend.Type == "" {
		cfg.Backend.Type = "libgphoto2"
	}
	switch cfg.Backend.Type {
	case "libgphoto2", "simulator":
	default:
		return fmt.Errorf("backend.type must be libgphoto2 or simulator, got %q", cfg.Backend.Type)
	}
	if cfg.Camera.USBBus < 0 || cfg.Camera.USBDevice < 0 {
		return fmt.Errorf("camera.usb_bus and camera.usb_device must be >= 0")
	}
	if (cfg.Camera.USBBus == 0) != (cfg.Camera.USBDevice == 0) {
		return fmt.Errorf("camera.usb_bus and camera.usb_device must be set together")
	}
	if cfg.Camera.CaptureTimeoutS <= 0 {
		cfg.Camera.CaptureTimeoutS = 60 // reasonable default
	}
	if cfg.Defaults.DownloadDir == "" {
		cfg.Defaults.DownloadDir = "."
	}
	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return fmt.Errorf("debug_level must be between 0 and 4, got %d", cfg.Defaults.DebugLevel)
	}
	return nil
}

// CaptureTimeout returns the capture wait bound as a duration.
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.Camera.CaptureTimeoutS) * time.Second
}

// PinsUSB reports whether the configuration pins a USB address.
func (c *Config) PinsUSB() bool {
	return c.Camera.USBBus > 0 && c.Camera.USBDevice > 0
}

// ValidateConfigPath checks that a user-supplied config path stays inside
// the configs/ directory and points at a YAML file.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty config path")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("config path must not traverse directories: %s", path)
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must live under configs/: %s", path)
	}
	return nil
}
