// Package config loads and saves host-side tickvm settings, grounded on
// config/config.go's TOML-backed struct and platform path conventions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/tickvm/tickvm/assembly"
)

// Config represents the host's tickvm configuration: machine Limits plus
// run/debugger/display options. Limits mirrors assembly.Limits - the CLI
// runner and the debugger both build a VM from it.
type Config struct {
	Limits struct {
		RegularRegisters int `toml:"regular_registers"`
		Pins             int `toml:"pins"`
		StackSize        int `toml:"stack_size"`
		RAMLength        int `toml:"ram_length"`
	} `toml:"limits"`

	// Execution settings
	Execution struct {
		MaxTicks      uint64 `toml:"max_ticks"`
		EnableTrace   bool   `toml:"enable_trace"`
		TraceCapacity int    `toml:"trace_capacity"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowSource    bool `toml:"show_source"`
		ShowRegisters bool `toml:"show_registers"`
		ShowStack     bool `toml:"show_stack"`
		ShowRAM       bool `toml:"show_ram"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex, dec, both
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values, mirroring
// assembly.DefaultLimits() for the Limits section.
func DefaultConfig() *Config {
	cfg := &Config{}

	limits := assembly.DefaultLimits()
	cfg.Limits.RegularRegisters = limits.RegularRegisters
	cfg.Limits.Pins = limits.Pins
	cfg.Limits.StackSize = limits.StackSize
	cfg.Limits.RAMLength = limits.RAMLength

	cfg.Execution.MaxTicks = 1000000
	cfg.Execution.EnableTrace = false
	cfg.Execution.TraceCapacity = 256

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowStack = true
	cfg.Debugger.ShowRAM = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.NumberFormat = "dec"

	return cfg
}

// ToLimits converts the config's Limits section to an assembly.Limits.
func (c *Config) ToLimits() assembly.Limits {
	return assembly.Limits{
		RegularRegisters: c.Limits.RegularRegisters,
		Pins:             c.Limits.Pins,
		StackSize:        c.Limits.StackSize,
		RAMLength:        c.Limits.RAMLength,
	}
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\tickvm\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "tickvm")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/tickvm/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "tickvm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "tickvm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "tickvm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, returning
// defaults if it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
