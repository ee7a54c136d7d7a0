// Package config loads and saves engine settings from a TOML file. Missing
// files and missing keys fall back to defaults, so a zero-config start works.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the user-tunable engine configuration.
type Settings struct {
	Window   WindowSettings   `toml:"window"`
	Stereo   StereoSettings   `toml:"stereo"`
	Render   RenderSettings   `toml:"render"`
	Engine   EngineSettings   `toml:"engine"`
	Profiler ProfilerSettings `toml:"profiler"`
}

// WindowSettings configures the OS window.
type WindowSettings struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// StereoSettings configures the stereo rig.
type StereoSettings struct {
	// IPD is the interpupillary distance in meters.
	IPD float32 `toml:"ipd"`
	// ClipOffset shears each eye's frustum toward the nose.
	ClipOffset float32 `toml:"clip_offset"`
}

// RenderSettings configures the renderer and the render style.
type RenderSettings struct {
	ShadowMapSize int     `toml:"shadow_map_size"`
	Exposure      float32 `toml:"exposure"`
	Gamma         float32 `toml:"gamma"`
	// MSAA is the multisample count: 1, 4, 8 or 16.
	MSAA int `toml:"msaa"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
}

// EngineSettings configures the frame loop.
type EngineSettings struct {
	TickRate   float64 `toml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit"`
}

// ProfilerSettings configures performance logging.
type ProfilerSettings struct {
	Enabled bool `toml:"enabled"`
}

// DefaultSettings returns the settings used when no config file exists.
//
// Returns:
//   - Settings: the default configuration
func DefaultSettings() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1600,
			Height: 900,
			Title:  "parallax",
		},
		Stereo: StereoSettings{
			IPD:        0.064,
			ClipOffset: 0,
		},
		Render: RenderSettings{
			ShadowMapSize: 512,
			Exposure:      1.0,
			Gamma:         2.2,
			MSAA:          4,
			PresentMode:   "vsync",
		},
		Engine: EngineSettings{
			TickRate:   60,
			FrameLimit: 0,
		},
		Profiler: ProfilerSettings{
			Enabled: false,
		},
	}
}

// Load reads settings from the given TOML file. A missing file returns the
// defaults without error; keys absent from the file keep their default value.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Settings: the loaded configuration
//   - error: an error if the file exists but cannot be read or parsed
func Load(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return settings, nil
}

// Save writes the settings to the given path as TOML.
//
// Parameters:
//   - path: the config file path
//   - settings: the configuration to write
//
// Returns:
//   - error: an error if encoding or writing fails
func Save(path string, settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
