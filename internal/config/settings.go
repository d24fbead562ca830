package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend setting.
const (
	BackendTinyGo = "tinygo"
	BackendHCI    = "hci"
)

// Duration is a time.Duration that reads and writes as "10s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings ("10s", "1m30s").
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ControlConfig locates the LED characteristic by position in the
// discovered service list.
type ControlConfig struct {
	ServiceIndex        int `yaml:"service_index"`
	CharacteristicIndex int `yaml:"characteristic_index"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // used when the TUI owns the terminal
}

// Config is the top-level tool configuration.
type Config struct {
	Backend        string        `yaml:"backend"`
	AdapterID      string        `yaml:"adapter_id,omitempty"`
	ScanPeriod     Duration      `yaml:"scan_period"`
	ConnectTimeout Duration      `yaml:"connect_timeout"`
	Control        ControlConfig `yaml:"control"`
	StorePath      string        `yaml:"store_path"`
	Log            LogConfig     `yaml:"log"`
}

// DefaultDir returns the tool's home directory (~/.smartdevice).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smartdevice"
	}
	return filepath.Join(home, ".smartdevice")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	dir := DefaultDir()
	return &Config{
		Backend:        BackendTinyGo,
		ScanPeriod:     Duration(10 * time.Second),
		ConnectTimeout: Duration(15 * time.Second),
		Control: ControlConfig{
			ServiceIndex:        2,
			CharacteristicIndex: 0,
		},
		StorePath: filepath.Join(dir, "devices.json"),
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "smartdevice.log"),
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies SMARTDEVICE_* environment variables.
// Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SMARTDEVICE_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("SMARTDEVICE_ADAPTER"); v != "" {
		cfg.AdapterID = v
	}
	if v := os.Getenv("SMARTDEVICE_SCAN_PERIOD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ScanPeriod = Duration(d)
		}
	}
	if v := os.Getenv("SMARTDEVICE_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = Duration(d)
		}
	}
	if v := os.Getenv("SMARTDEVICE_SERVICE_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Control.ServiceIndex = n
		}
	}
	if v := os.Getenv("SMARTDEVICE_CHARACTERISTIC_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Control.CharacteristicIndex = n
		}
	}
	if v := os.Getenv("SMARTDEVICE_STORE"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("SMARTDEVICE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SMARTDEVICE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// Validate rejects settings the tool cannot run with.
func Validate(cfg *Config) error {
	var errs []error
	switch cfg.Backend {
	case BackendTinyGo, BackendHCI:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown backend %q (want %s or %s)", cfg.Backend, BackendTinyGo, BackendHCI))
	}
	if cfg.ScanPeriod <= 0 {
		errs = append(errs, errors.New("scan_period: must be positive"))
	}
	if cfg.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("connect_timeout: must be positive"))
	}
	if cfg.Control.ServiceIndex < 0 {
		errs = append(errs, errors.New("control.service_index: must not be negative"))
	}
	if cfg.Control.CharacteristicIndex < 0 {
		errs = append(errs, errors.New("control.characteristic_index: must not be negative"))
	}
	if cfg.StorePath == "" {
		errs = append(errs, errors.New("store_path: must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
