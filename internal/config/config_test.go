package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/simtempd/internal/config"
	"codeberg.org/mutker/simtempd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "simtempd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func resetArgs(t *testing.T) {
	t.Helper()

	oldArgs := os.Args
	os.Args = []string{"simtempd"}
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestLoad(t *testing.T) {
	resetArgs(t)

	configPath := writeConfigFile(t, `
sampling_ms = 250
threshold_mc = 38000
mode = "ramp"
capacity = 64
debug = true
log_level = "debug"
telemetry = true
telemetry_db = "/path/to/telemetry.db"
mqtt_broker = "tcp://broker.local:1883"
`)
	t.Setenv("SIMTEMPD_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.SamplingMs)
	assert.Equal(t, 38000, cfg.ThresholdMilliC)
	assert.Equal(t, "ramp", cfg.Mode)
	assert.Equal(t, 64, cfg.Capacity)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTTBroker)
}

func TestLoadDefaults(t *testing.T) {
	resetArgs(t)

	// Point at an empty config file so nothing on the host interferes
	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, ""))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultSamplingMs, cfg.SamplingMs)
	assert.Equal(t, config.DefaultThresholdMilliC, cfg.ThresholdMilliC)
	assert.Equal(t, config.DefaultMode, cfg.Mode)
	assert.Equal(t, config.DefaultCapacity, cfg.Capacity)
	assert.False(t, cfg.Debug)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Telemetry)
	assert.Empty(t, cfg.MQTTBroker)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	resetArgs(t)

	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, `
This is not a valid TOML file
`))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidSamplingInterval(t *testing.T) {
	resetArgs(t)

	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, `
sampling_ms = 0
`))

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestInvalidMode(t *testing.T) {
	resetArgs(t)

	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, `
mode = "sine"
`))

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidMode))
}

func TestInvalidLogLevel(t *testing.T) {
	resetArgs(t)

	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, `
log_level = "invalid"
`))

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestFlagsOverrideFile(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"simtempd", "--sampling-ms", "50", "--mode", "noisy"}
	t.Cleanup(func() { os.Args = oldArgs })

	t.Setenv("SIMTEMPD_CONFIG", writeConfigFile(t, `
sampling_ms = 2000
mode = "ramp"
threshold_mc = 40000
`))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.SamplingMs, "flag wins over file")
	assert.Equal(t, "noisy", cfg.Mode, "flag wins over file")
	assert.Equal(t, 40000, cfg.ThresholdMilliC, "file value survives when no flag is set")
}
