package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	old := os.Getenv("XDG_CONFIG_HOME")
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", tmpDir))
	t.Cleanup(func() {
		if old != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", old)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	return tmpDir
}

func TestGetDefaultConfigFillsSessionDefaults(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, 5e9, float64(cfg.Session.ReplyTimeout))
	assert.Equal(t, 30e9, float64(cfg.Session.KeepAliveInterval))
	assert.Equal(t, 2, cfg.Session.NegotiateResendMax)
	assert.Equal(t, "sqlite", string(cfg.ControlPlane.Type))
}

func TestLoadWithNoConfigFileAppliesDefaults(t *testing.T) {
	withTempConfigDir(t)
	require.NoError(t, os.Setenv("GATEFIX_CONTROLPLANE_SECRET", "test-secret"))
	defer os.Unsetenv("GATEFIX_CONTROLPLANE_SECRET")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.ControlPlaneSecret)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadMissingSecretFailsValidation(t *testing.T) {
	withTempConfigDir(t)
	os.Unsetenv("GATEFIX_CONTROLPLANE_SECRET")

	_, err := Load("", nil)
	require.Error(t, err)
}

func TestLoadReadsExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: DEBUG\n  format: json\n  output: stdout\n"), 0o600))
	require.NoError(t, os.Setenv("GATEFIX_CONTROLPLANE_SECRET", "test-secret"))
	defer os.Unsetenv("GATEFIX_CONTROLPLANE_SECRET")

	cfg, err := Load(path, viper.New())
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadParsesHumanReadableDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  reply_timeout_ms: 2500ms\n  keep_alive_interval_ms: 1m\n"), 0o600))
	require.NoError(t, os.Setenv("GATEFIX_CONTROLPLANE_SECRET", "test-secret"))
	defer os.Unsetenv("GATEFIX_CONTROLPLANE_SECRET")

	cfg, err := Load(path, viper.New())
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Session.ReplyTimeout)
	assert.Equal(t, time.Minute, cfg.Session.KeepAliveInterval)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ControlPlaneSecret = "x"
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestSaveConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	cfg := GetDefaultConfig()
	cfg.ControlPlaneSecret = "s"
	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logging:")
}
