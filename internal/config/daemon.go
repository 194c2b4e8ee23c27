package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pelletier/go-toml/v2"
)

// DaemonConfig is the configuration for notextd.
// Loaded from ~/.config/notext/notextd.toml
type DaemonConfig struct {
	Server   ServerConfig   `toml:"server"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Control  ControlConfig  `toml:"control"`
	Render   RenderConfig   `toml:"render"`
	Internal InternalConfig `toml:"internal"`
}

// ServerConfig is what GetServerInformation reports. The version always
// comes from the build.
type ServerConfig struct {
	Name        string `toml:"name"`
	Vendor      string `toml:"vendor"`
	SpecVersion string `toml:"spec_version"`
}

// TimeoutConfig contains expiry settings.
// Durations can be specified as "5s", "10s", "1m", etc. or as integer milliseconds.
type TimeoutConfig struct {
	Default Duration `toml:"default"` // Used when a client sends -1
	Max     Duration `toml:"max"`     // Clamp for explicit timeouts, "0" = unlimited
}

// ControlConfig locates the control service on the session bus.
type ControlConfig struct {
	BusName string `toml:"bus_name"`
	Path    string `toml:"path"`
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	BodyLimit int `toml:"body_limit"` // Display columns in the compact view, 0 = unlimited
}

// InternalConfig controls notifications notextd posts about itself.
type InternalConfig struct {
	NotifyReload bool     `toml:"notify_reload"`
	MinInterval  Duration `toml:"min_interval"` // Between repeats of the same notice
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Server: ServerConfig{
			Name:        "notext",
			Vendor:      "CatThingy",
			SpecVersion: "1.2",
		},
		Timeouts: TimeoutConfig{
			Default: Duration(5 * time.Second),
			Max:     Duration(0),
		},
		Control: ControlConfig{
			BusName: "io.github.jmylchreest.notext",
			Path:    "/io/github/jmylchreest/notext/Control",
		},
		Render: RenderConfig{
			BodyLimit: 0,
		},
		Internal: InternalConfig{
			NotifyReload: true,
			MinInterval:  Duration(5 * time.Second),
		},
	}
}

// LoadDaemonConfig loads the daemon configuration from path.
// An empty path selects DaemonConfigPath. If the file doesn't exist, returns
// the default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		p, err := DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	if path == "" {
		p, err := DaemonConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Timeouts.Default.Duration() <= 0 {
		return fmt.Errorf("timeouts.default must be positive, got %s", c.Timeouts.Default.Duration())
	}
	if c.Timeouts.Max.Duration() < 0 {
		return fmt.Errorf("timeouts.max must not be negative, got %s", c.Timeouts.Max.Duration())
	}
	if c.Server.Name == "" {
		return fmt.Errorf("server.name must not be empty")
	}
	if !validBusName(c.Control.BusName) {
		return fmt.Errorf("invalid control.bus_name %q", c.Control.BusName)
	}
	if !dbus.ObjectPath(c.Control.Path).IsValid() {
		return fmt.Errorf("invalid control.path %q", c.Control.Path)
	}
	if c.Render.BodyLimit < 0 {
		return fmt.Errorf("render.body_limit must not be negative, got %d", c.Render.BodyLimit)
	}
	if c.Internal.MinInterval.Duration() < 0 {
		return fmt.Errorf("internal.min_interval must not be negative, got %s", c.Internal.MinInterval.Duration())
	}
	return nil
}

// validBusName accepts well-known names: two or more dot-separated elements.
func validBusName(name string) bool {
	if name == "" || len(name) > 255 || strings.HasPrefix(name, ":") {
		return false
	}
	elems := strings.Split(name, ".")
	if len(elems) < 2 {
		return false
	}
	for _, e := range elems {
		if e == "" || (e[0] >= '0' && e[0] <= '9') {
			return false
		}
		for _, r := range e {
			if !isNameRune(r) && r != '-' {
				return false
			}
		}
	}
	return true
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
