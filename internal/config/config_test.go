package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "opencl", cfg.Device.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
device:
  driver: Host
verify:
  tolerance: 0.01
logging:
  level: debug
  file: ~/logs/ocl.log
  console: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "host", cfg.Device.Driver)
	assert.InDelta(t, 0.01, cfg.Verify.Tolerance, 1e-12)
	assert.Equal(t, int64(1), cfg.Verify.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "logs", "ocl.log"), cfg.Logging.File)
	assert.False(t, cfg.Logging.Console)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "device:\n  driver: opencl\n")
	t.Setenv("OCLALGEBRA_DEVICE_DRIVER", "host")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "host", cfg.Device.Driver)
}

func TestLoadWithFlagOverride(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: error\n")

	v := viper.New()
	v.Set("logging.level", "debug")

	cfg, err := LoadWith(v, path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"driver", "device:\n  driver: cuda\n", "device.driver"},
		{"level", "logging:\n  level: trace\n", "logging.level"},
		{"tolerance", "verify:\n  tolerance: 0\n", "verify.tolerance"},
		{"syntax", "device: [", "reading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("OCL_TEST_DIR", "/var/tmp")
	home, _ := os.UserHomeDir()

	assert.Equal(t, filepath.Join(home, "a.log"), expandPath("~/a.log"))
	assert.Equal(t, "/var/tmp/a.log", expandPath("$OCL_TEST_DIR/a.log"))
	assert.Equal(t, "", expandPath(""))
}
