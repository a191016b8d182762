package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Example ExampleConfig `toml:"example"`
	Jobs    JobsConfig    `toml:"jobs"`
	Render  RenderConfig  `toml:"render"`
	Window  WindowConfig  `toml:"window"`
	Script  ScriptConfig  `toml:"script"`
	Logging LoggingConfig `toml:"logging"`
	Record  RecordConfig  `toml:"record"`

	// Raw holds the file bytes the config was parsed from (nil for defaults).
	Raw []byte `toml:"-"`
}

type ExampleConfig struct {
	Name          string `toml:"name"`
	InitialWidth  uint32 `toml:"initial_width"`
	InitialHeight uint32 `toml:"initial_height"`
	ShowOverlay   bool   `toml:"show_overlay"`
	OverlayCorner int    `toml:"overlay_corner"` // 0=TL 1=TR 2=BL 3=BR, -1=free
	MaxFrames     uint64 `toml:"max_frames"`     // 0 = unbounded
}

type JobsConfig struct {
	NumFibers int `toml:"num_fibers"`
	Workers   int `toml:"workers"` // 0 = host logical processor count
}

type RenderConfig struct {
	ValidationLayers bool      `toml:"validation_layers"`
	DeviceIndex      uint32    `toml:"device_index"`
	DeviceCount      int       `toml:"device_count"` // headless backend only
	MaxExtent        [2]uint32 `toml:"max_extent"`   // headless swap chain clamp
}

type WindowConfig struct {
	Resizable    bool   `toml:"resizable"`
	EventsScript string `toml:"events_script"` // YAML script for the headless window
}

type ScriptConfig struct {
	Path string `toml:"path"` // Lua application; empty = built-in demo
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RecordConfig struct {
	DSN     string        `toml:"dsn"`
	Timeout time.Duration `toml:"timeout"`
}

// Load reads a TOML file on top of the defaults. A missing file is only an
// error when mustExist is set.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Raw = data
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	if c.Example.InitialWidth == 0 || c.Example.InitialHeight == 0 {
		return fmt.Errorf("example window size must be non-zero, got %dx%d",
			c.Example.InitialWidth, c.Example.InitialHeight)
	}
	if c.Jobs.NumFibers <= 0 {
		return fmt.Errorf("jobs.num_fibers must be positive, got %d", c.Jobs.NumFibers)
	}
	if c.Example.OverlayCorner < -1 || c.Example.OverlayCorner > 3 {
		return fmt.Errorf("example.overlay_corner must be in [-1,3], got %d", c.Example.OverlayCorner)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Example: ExampleConfig{
			Name:          "Horizon Example",
			InitialWidth:  1280,
			InitialHeight: 720,
			ShowOverlay:   true,
		},
		Jobs: JobsConfig{
			NumFibers: 128,
		},
		Render: RenderConfig{
			ValidationLayers: true,
			DeviceCount:      1,
			MaxExtent:        [2]uint32{16384, 16384},
		},
		Window: WindowConfig{
			Resizable: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Record: RecordConfig{
			Timeout: 10 * time.Second,
		},
	}
}
