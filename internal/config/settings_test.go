package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, BackendTinyGo, cfg.Backend)
	assert.Equal(t, 10*time.Second, cfg.ScanPeriod.Std())
	assert.Equal(t, 15*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, 2, cfg.Control.ServiceIndex)
	assert.Equal(t, 0, cfg.Control.CharacteristicIndex)
	assert.Equal(t, "devices.json", filepath.Base(cfg.StorePath))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: hci
adapter_id: hci1
scan_period: 30s
control:
  service_index: 3
  characteristic_index: 1
log:
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendHCI, cfg.Backend)
	assert.Equal(t, "hci1", cfg.AdapterID)
	assert.Equal(t, 30*time.Second, cfg.ScanPeriod.Std())
	assert.Equal(t, 15*time.Second, cfg.ConnectTimeout.Std(), "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Control.ServiceIndex)
	assert.Equal(t, 1, cfg.Control.CharacteristicIndex)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan_period: soon\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SMARTDEVICE_BACKEND", "HCI")
	t.Setenv("SMARTDEVICE_SCAN_PERIOD", "2s")
	t.Setenv("SMARTDEVICE_CONNECT_TIMEOUT", "not-a-duration")
	t.Setenv("SMARTDEVICE_SERVICE_INDEX", "4")
	t.Setenv("SMARTDEVICE_CHARACTERISTIC_INDEX", "2")
	t.Setenv("SMARTDEVICE_STORE", "/tmp/devices.json")
	t.Setenv("SMARTDEVICE_LOG_FILE", "/tmp/sd.log")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, BackendHCI, cfg.Backend)
	assert.Equal(t, 2*time.Second, cfg.ScanPeriod.Std())
	assert.Equal(t, 15*time.Second, cfg.ConnectTimeout.Std(), "unparseable values are ignored")
	assert.Equal(t, 4, cfg.Control.ServiceIndex)
	assert.Equal(t, 2, cfg.Control.CharacteristicIndex)
	assert.Equal(t, "/tmp/devices.json", cfg.StorePath)
	assert.Equal(t, "/tmp/sd.log", cfg.Log.File)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Backend = "bluez"
	cfg.ScanPeriod = 0
	cfg.Control.ServiceIndex = -1
	cfg.StorePath = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
	assert.Contains(t, err.Error(), "scan_period")
	assert.Contains(t, err.Error(), "control.service_index")
	assert.Contains(t, err.Error(), "store_path")
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Defaults().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan_period: 10s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() {
		Verbose = false
		Log.SetOutput(os.Stderr)
		Log.SetLevel(logrus.InfoLevel)
	})

	cfg := Defaults()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "smartdevice.log")

	closer, err := SetupLogging(cfg, true)
	require.NoError(t, err)
	Log.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())

	Verbose = true
	closer, err = SetupLogging(cfg, false)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	cfg.Log.Level = "loud"
	_, err = SetupLogging(cfg, false)
	assert.Error(t, err)
}

func TestDebugfFollowsConfiguredLevel(t *testing.T) {
	t.Cleanup(func() {
		Log.SetOutput(os.Stderr)
		Log.SetLevel(logrus.InfoLevel)
	})

	cfg := Defaults()
	cfg.Log.File = filepath.Join(t.TempDir(), "smartdevice.log")

	cfg.Log.Level = "info"
	closer, err := SetupLogging(cfg, true)
	require.NoError(t, err)
	Debugf("hidden at info")
	require.NoError(t, closer.Close())

	cfg.Log.Level = "debug"
	closer, err = SetupLogging(cfg, true)
	require.NoError(t, err)
	Debugf("shown at %s", "debug")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden at info")
	assert.Contains(t, string(data), "shown at debug")
}

func TestSetupLoggingStderrCloserIsNoop(t *testing.T) {
	t.Cleanup(func() { Log.SetLevel(logrus.InfoLevel) })

	closer, err := SetupLogging(Defaults(), false)
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())
	assert.NoError(t, closer.Close())
}
