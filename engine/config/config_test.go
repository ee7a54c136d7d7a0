package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 2560\n"), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2560, settings.Window.Width)
	// Everything else stays at defaults.
	assert.Equal(t, 900, settings.Window.Height)
	assert.Equal(t, float32(2.2), settings.Render.Gamma)
	assert.Equal(t, "vsync", settings.Render.PresentMode)
	assert.Equal(t, float64(60), settings.Engine.TickRate)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	want := DefaultSettings()
	want.Window.Title = "demo"
	want.Stereo.IPD = 0.07
	want.Stereo.ClipOffset = 0.05
	want.Render.ShadowMapSize = 2048
	want.Render.MSAA = 8
	want.Render.PresentMode = "uncapped"
	want.Profiler.Enabled = true

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
