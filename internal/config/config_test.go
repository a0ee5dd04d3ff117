package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50.0, cfg.Gesture.VelocityThreshold)
	assert.Equal(t, 0.3, cfg.Gesture.MaxBeginYFraction)
	assert.Equal(t, 0.9, cfg.Gesture.NegativeResistance)
	assert.Equal(t, 0.85, cfg.Gesture.OffsetTargetFraction)
	assert.Equal(t, 4.0, cfg.Gesture.PanSlop)
	assert.Equal(t, 100*time.Millisecond, cfg.Gesture.VelocityWindow.Duration())
	assert.Equal(t, 300*time.Millisecond, cfg.Animation.LinearDuration.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.SpringDuration.Duration())
	assert.Equal(t, 0.75, cfg.Animation.SpringDamping)
	assert.Equal(t, 60, cfg.Animation.FrameRate)
	assert.True(t, cfg.TUI.ShowHelp)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	// Use a path that doesn't exist
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[gesture]
velocity_threshold = 80.0
offset_target_fraction = 0.6
velocity_window = "150"

[animation]
linear_duration = "250ms"
spring_duration = "1s"
spring_damping = 1.0
frame_rate = 120

[tui]
cell_width = 10.0
show_help = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.Gesture.VelocityThreshold)
	assert.Equal(t, 0.6, cfg.Gesture.OffsetTargetFraction)
	assert.Equal(t, 150*time.Millisecond, cfg.Gesture.VelocityWindow.Duration())
	assert.Equal(t, 250*time.Millisecond, cfg.Animation.LinearDuration.Duration())
	assert.Equal(t, time.Second, cfg.Animation.SpringDuration.Duration())
	assert.Equal(t, 1.0, cfg.Animation.SpringDamping)
	assert.Equal(t, 120, cfg.Animation.FrameRate)
	assert.Equal(t, 10.0, cfg.TUI.CellWidth)
	assert.False(t, cfg.TUI.ShowHelp)

	// Unset keys keep their defaults
	assert.Equal(t, DefaultMaxBeginYFraction, cfg.Gesture.MaxBeginYFraction)
	assert.Equal(t, DefaultNegativeResistance, cfg.Gesture.NegativeResistance)
	assert.Equal(t, DefaultCellHeight, cfg.TUI.CellHeight)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[gesture\nbroken"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[animation]\nlinear_duration = \"soon\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"velocity threshold", func(c *Config) { c.Gesture.VelocityThreshold = 0 }, "gesture.velocity_threshold"},
		{"max begin", func(c *Config) { c.Gesture.MaxBeginYFraction = 1.5 }, "gesture.max_begin_y_fraction"},
		{"resistance", func(c *Config) { c.Gesture.NegativeResistance = -0.1 }, "gesture.negative_resistance"},
		{"offset target", func(c *Config) { c.Gesture.OffsetTargetFraction = 1 }, "gesture.offset_target_fraction"},
		{"slop", func(c *Config) { c.Gesture.PanSlop = -1 }, "gesture.pan_slop"},
		{"velocity window", func(c *Config) { c.Gesture.VelocityWindow = 0 }, "gesture.velocity_window"},
		{"linear", func(c *Config) { c.Animation.LinearDuration = 0 }, "animation.linear_duration"},
		{"spring", func(c *Config) { c.Animation.SpringDuration = -1 }, "animation.spring_duration"},
		{"damping", func(c *Config) { c.Animation.SpringDamping = 0 }, "animation.spring_damping"},
		{"frame rate", func(c *Config) { c.Animation.FrameRate = 0 }, "animation.frame_rate"},
		{"cells", func(c *Config) { c.TUI.CellHeight = 0 }, "tui.cell_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Gesture.OffsetTargetFraction = 0.7
	cfg.Animation.SpringDuration = Duration(750 * time.Millisecond)
	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "750ms")
}

func TestPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/winstack/config.toml", Path())
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Gesture.PanSlop = 99
	assert.Equal(t, DefaultPanSlop, cfg.Gesture.PanSlop)
}

func TestWatcher_ReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := Default()
	require.NoError(t, initial.Save(path))

	w := NewWatcher(path, nil)
	w.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan *Config, 4)
	failed := make(chan error, 4)
	w.SetReloadCallback(func(cfg *Config) { reloaded <- cfg })
	w.SetErrorCallback(func(err error) { failed <- err })

	require.NoError(t, w.Start(context.Background(), initial))
	defer w.Stop()
	assert.Same(t, initial, w.Current())

	updated := Default()
	updated.Gesture.VelocityThreshold = 120
	require.NoError(t, updated.Save(path))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 120.0, cfg.Gesture.VelocityThreshold)
		assert.Equal(t, 120.0, w.Current().Gesture.VelocityThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	require.NoError(t, os.WriteFile(path, []byte("[gesture]\nvelocity_threshold = -1\n"), 0644))
	select {
	case err := <-failed:
		assert.Contains(t, err.Error(), "gesture.velocity_threshold")
		assert.Equal(t, 120.0, w.Current().Gesture.VelocityThreshold, "invalid configs are not applied")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for validation error")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), nil)
	w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, Default()))
	require.NoError(t, w.Start(ctx, Default()))
	cancel()
	w.Stop()
	w.Stop()
}

func TestWatcher_RestartsAfterContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().Save(path))

	w := NewWatcher(path, nil)
	w.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan *Config, 4)
	w.SetReloadCallback(func(cfg *Config) { reloaded <- cfg })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, Default()))
	assert.True(t, w.Running())
	cancel()
	require.Eventually(t, func() bool { return !w.Running() }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Start(context.Background(), Default()))
	defer w.Stop()
	assert.True(t, w.Running())

	updated := Default()
	updated.Gesture.VelocityThreshold = 150
	require.NoError(t, updated.Save(path))
	select {
	case cfg := <-reloaded:
		assert.Equal(t, 150.0, cfg.Gesture.VelocityThreshold)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload after restart")
	}
}
