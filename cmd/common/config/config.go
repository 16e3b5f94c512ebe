// Package config provides configuration loading for tempus.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gigurra/tempus/cmd/common/temporal"
)

// EnvPath overrides the config file location.
const EnvPath = "TEMPUS_CONFIG"

// Config represents the tempus configuration file structure.
type Config struct {
	Output string       `json:"output,omitempty"` // text, json or table
	Input  string       `json:"input,omitempty"`  // auto, text or number
	Unit   string       `json:"unit,omitempty"`   // auto, s, ms, us or ns
	Now    string       `json:"now,omitempty"`    // pinned current time, any datetime input
	Watch  *WatchConfig `json:"watch,omitempty"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	DebounceMillis int  `json:"debounce_millis,omitempty"`
	ClearScreen    bool `json:"clear_screen"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: "text",
		Input:  "auto",
		Unit:   "auto",
		Watch: &WatchConfig{
			DebounceMillis: 100,
			ClearScreen:    true,
		},
	}
}

// ConfigDir returns the tempus config directory (~/.tempus).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tempus")
}

// ConfigPath returns the path to the config file, honouring TEMPUS_CONFIG.
func ConfigPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ConfigPath.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	defaults := DefaultConfig()
	if config.Output == "" {
		config.Output = defaults.Output
	}
	if config.Input == "" {
		config.Input = defaults.Input
	}
	if config.Unit == "" {
		config.Unit = defaults.Unit
	}
	if config.Watch == nil {
		config.Watch = defaults.Watch
	} else if config.Watch.DebounceMillis == 0 {
		config.Watch.DebounceMillis = defaults.Watch.DebounceMillis
	}

	return &config, nil
}

// Save saves the config to ConfigPath.
func Save(config *Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clock returns the current time, or the pinned "now" when one is configured.
// A pinned naive datetime is read in the local zone.
func (c *Config) Clock() (time.Time, error) {
	if c == nil || c.Now == "" {
		return time.Now(), nil
	}
	dt, err := temporal.ParseDateTime(c.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("config now: %w", err)
	}
	return dt.In(time.Local), nil
}

// NumericUnit returns the configured unit for numeric input.
func (c *Config) NumericUnit() (temporal.Unit, error) {
	if c == nil || c.Unit == "" {
		return temporal.UnitAuto, nil
	}
	return temporal.ParseUnit(c.Unit)
}

// Debounce is the delay before the watch command re-runs after a change.
func (c *WatchConfig) Debounce() time.Duration {
	if c == nil || c.DebounceMillis <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.DebounceMillis) * time.Millisecond
}
