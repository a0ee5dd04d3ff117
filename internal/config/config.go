// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultVelocityThreshold    = 50.0
	DefaultMaxBeginYFraction    = 0.3
	DefaultNegativeResistance   = 0.9
	DefaultOffsetTargetFraction = 0.85
	DefaultPanSlop              = 4.0
	DefaultVelocityWindow       = 100 * time.Millisecond
	DefaultLinearDuration       = 300 * time.Millisecond
	DefaultSpringDuration       = 500 * time.Millisecond
	DefaultSpringDamping        = 0.75
	DefaultFrameRate            = 60
	DefaultCellWidth            = 8.0
	DefaultCellHeight           = 16.0
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "300ms", "1s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Try parsing as integer (milliseconds)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '300ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the winstack configuration.
// Loaded from ~/.config/winstack/config.toml
type Config struct {
	Gesture   GestureConfig   `toml:"gesture"`
	Animation AnimationConfig `toml:"animation"`
	TUI       TUIConfig       `toml:"tui"`
}

// GestureConfig holds the thresholds that gate and resolve gestures.
type GestureConfig struct {
	VelocityThreshold    float64  `toml:"velocity_threshold"`     // points/sec, begin gate and fling speed
	MaxBeginYFraction    float64  `toml:"max_begin_y_fraction"`   // of screen height
	NegativeResistance   float64  `toml:"negative_resistance"`    // 0.0-1.0, damping above rest
	OffsetTargetFraction float64  `toml:"offset_target_fraction"` // of screen height
	PanSlop              float64  `toml:"pan_slop"`               // points before a pan is considered
	VelocityWindow       Duration `toml:"velocity_window"`        // trailing span for velocity estimates
}

// AnimationConfig holds transition timing.
type AnimationConfig struct {
	LinearDuration Duration `toml:"linear_duration"`
	SpringDuration Duration `toml:"spring_duration"`
	SpringDamping  float64  `toml:"spring_damping"` // 1.0 = critically damped
	FrameRate      int      `toml:"frame_rate"`
}

// TUIConfig holds terminal host settings.
type TUIConfig struct {
	CellWidth  float64 `toml:"cell_width"`  // points per terminal column
	CellHeight float64 `toml:"cell_height"` // points per terminal row
	ShowHelp   bool    `toml:"show_help"`
	Theme      string  `toml:"theme"` // palette name, bundled or in ~/.config/winstack/themes

	// ClipboardCommand receives the copied journal on stdin. Empty auto-detects.
	ClipboardCommand string `toml:"clipboard_command"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Gesture: GestureConfig{
			VelocityThreshold:    DefaultVelocityThreshold,
			MaxBeginYFraction:    DefaultMaxBeginYFraction,
			NegativeResistance:   DefaultNegativeResistance,
			OffsetTargetFraction: DefaultOffsetTargetFraction,
			PanSlop:              DefaultPanSlop,
			VelocityWindow:       Duration(DefaultVelocityWindow),
		},
		Animation: AnimationConfig{
			LinearDuration: Duration(DefaultLinearDuration),
			SpringDuration: Duration(DefaultSpringDuration),
			SpringDamping:  DefaultSpringDamping,
			FrameRate:      DefaultFrameRate,
		},
		TUI: TUIConfig{
			CellWidth:  DefaultCellWidth,
			CellHeight: DefaultCellHeight,
			ShowHelp:   true,
			Theme:      "default",
		},
	}
}

// Path returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "winstack", "config.toml")
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	// Start with defaults, then overlay with file contents
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed and replaces the file atomically.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Marshal returns the TOML encoding of the configuration.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	g := c.Gesture
	if g.VelocityThreshold <= 0 {
		return fmt.Errorf("gesture.velocity_threshold must be positive, got %v", g.VelocityThreshold)
	}
	if g.MaxBeginYFraction <= 0 || g.MaxBeginYFraction > 1 {
		return fmt.Errorf("gesture.max_begin_y_fraction must be in (0, 1], got %v", g.MaxBeginYFraction)
	}
	if g.NegativeResistance < 0 || g.NegativeResistance > 1 {
		return fmt.Errorf("gesture.negative_resistance must be between 0 and 1, got %v", g.NegativeResistance)
	}
	if g.OffsetTargetFraction <= 0 || g.OffsetTargetFraction >= 1 {
		return fmt.Errorf("gesture.offset_target_fraction must be in (0, 1), got %v", g.OffsetTargetFraction)
	}
	if g.PanSlop < 0 {
		return fmt.Errorf("gesture.pan_slop must not be negative, got %v", g.PanSlop)
	}
	if g.VelocityWindow.Duration() <= 0 {
		return fmt.Errorf("gesture.velocity_window must be positive, got %s", g.VelocityWindow.Duration())
	}

	a := c.Animation
	if a.LinearDuration.Duration() <= 0 {
		return fmt.Errorf("animation.linear_duration must be positive, got %s", a.LinearDuration.Duration())
	}
	if a.SpringDuration.Duration() <= 0 {
		return fmt.Errorf("animation.spring_duration must be positive, got %s", a.SpringDuration.Duration())
	}
	if a.SpringDamping <= 0 || a.SpringDamping > 2 {
		return fmt.Errorf("animation.spring_damping must be in (0, 2], got %v", a.SpringDamping)
	}
	if a.FrameRate < 1 || a.FrameRate > 240 {
		return fmt.Errorf("animation.frame_rate must be between 1 and 240, got %d", a.FrameRate)
	}

	if c.TUI.CellWidth <= 0 || c.TUI.CellHeight <= 0 {
		return fmt.Errorf("tui.cell_width and tui.cell_height must be positive, got %vx%v", c.TUI.CellWidth, c.TUI.CellHeight)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
