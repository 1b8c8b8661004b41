package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
backend:
  type: simulator
camera:
  usb_bus: 1
  usb_device: 5
  capture_timeout_s: 30
defaults:
  download_dir: /tmp/photos
  debug_level: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "simulator", cfg.Backend.Type)
	assert.True(t, cfg.PinsUSB())
	assert.Equal(t, 30*time.Second, cfg.CaptureTimeout())
	assert.Equal(t, "/tmp/photos", cfg.Defaults.DownloadDir)
	assert.Equal(t, 3, cfg.Defaults.DebugLevel)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, "libgphoto2", cfg.Backend.Type)
	assert.False(t, cfg.PinsUSB())
	assert.Equal(t, 60*time.Second, cfg.CaptureTimeout())
	assert.Equal(t, ".", cfg.Defaults.DownloadDir)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown backend": "backend:\n  type: webcam\n",
		"half usb pair":   "camera:\n  usb_bus: 1\n",
		"negative usb":    "camera:\n  usb_bus: -1\n  usb_device: -1\n",
		"debug too high":  "defaults:\n  debug_level: 9\n",
		"bad yaml":        "backend: [n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "libgphoto2", cfg.Backend.Type)
	assert.Equal(t, 60*time.Second, cfg.CaptureTimeout())
}

func TestValidateConfigPath_Valid(t *testing.T) {
	assert.NoError(t, ValidateConfigPath(filepath.Join("configs", "default.yaml")))
}

func TestValidateConfigPath_Rejected(t *testing.T) {
	cases := []string{
		"",
		"../../etc/passwd",
		"configs/../../../etc/shadow",
		"configs/default.json",
		"configs/default.yml",
		"other/default.yaml",
		"default.yaml",
		"/tmp/default.yaml",
	}
	for _, path := range cases {
		assert.Error(t, ValidateConfigPath(path), path)
	}
}

func TestValidateConfigPath_VeryLongPath(t *testing.T) {
	long := "configs/" + strings.Repeat("a", 1000) + ".yaml"
	// Must not panic; error or success is OS-dependent.
	_ = ValidateConfigPath(long)
}
