// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ShadowBoxConfig is the fixed orthographic volume used for directional shadows.
type ShadowBoxConfig struct {
	HalfExtent float32 `yaml:"half_extent"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	Distance   float32 `yaml:"distance"` // eye offset from the origin along -direction
}

// RenderConfig holds renderer and bake resolution constants.
type RenderConfig struct {
	ShadowResolution int             `yaml:"shadow_resolution"`
	MaxShadowLights  int             `yaml:"max_shadow_lights"`
	ShadowBox        ShadowBoxConfig `yaml:"shadow_box"`
	EnvCubeSize      int             `yaml:"env_cube_size"`
	PrefilterSize    int             `yaml:"prefilter_size"`
	PrefilterMips    int             `yaml:"prefilter_mips"`
	BRDFSize         int             `yaml:"brdf_size"`
	SHClamp          float64         `yaml:"sh_clamp"`
	ClearColor       [4]float32      `yaml:"clear_color,flow"`
}

// ModelConfig places one imported file in the scene.
type ModelConfig struct {
	Path     string     `yaml:"path"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [3]float32 `yaml:"rotation,flow"` // degrees
	Scale    [3]float32 `yaml:"scale,flow"`
}

// LightConfig describes one light. Type is "directional" or "point".
// A directional light uses Direction when non-zero, otherwise Azimuth/Elevation.
type LightConfig struct {
	Type          string     `yaml:"type"`
	Direction     [3]float32 `yaml:"direction,flow"`
	Azimuth       float32    `yaml:"azimuth"`
	Elevation     float32    `yaml:"elevation"`
	Color         [3]float32 `yaml:"color,flow"`
	Intensity     float32    `yaml:"intensity"`
	Position      [3]float32 `yaml:"position,flow"`
	Radius        float32    `yaml:"radius"`
	SpinDegPerSec float32    `yaml:"spin_deg_per_sec"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Radius float32 `yaml:"radius"`
	Theta  float32 `yaml:"theta"` // yaw, degrees
	Phi    float32 `yaml:"phi"`   // pitch, degrees
	FOV    float32 `yaml:"fov"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// SceneConfig describes what gets loaded at startup.
type SceneConfig struct {
	AssetRoots []string      `yaml:"asset_roots"`
	Models     []ModelConfig `yaml:"models"`
	Skybox     string        `yaml:"skybox"`
	Lights     []LightConfig `yaml:"lights"`
	Camera     CameraConfig  `yaml:"camera"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Light type names.
const (
	LightDirectional = "directional"
	LightPoint       = "point"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "prism",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			ShadowResolution: 2048,
			MaxShadowLights:  4,
			ShadowBox: ShadowBoxConfig{
				HalfExtent: 10,
				Near:       0.1,
				Far:        50,
				Distance:   20,
			},
			EnvCubeSize:   1024,
			PrefilterSize: 512,
			PrefilterMips: 9,
			BRDFSize:      512,
			SHClamp:       0,
			ClearColor:    [4]float32{0.1, 0.1, 0.1, 1},
		},
		Scene: SceneConfig{
			AssetRoots: []string{"assets"},
			Lights: []LightConfig{
				{
					Type:      LightDirectional,
					Direction: [3]float32{-1, -1, -1},
					Color:     [3]float32{1, 0.996, 0.969},
					Intensity: 3,
				},
			},
			Camera: CameraConfig{
				Radius: 5,
				FOV:    36,
				Near:   0.1,
				Far:    100,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that would make the renderer misbehave.
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}

	r := c.Render
	if r.ShadowResolution <= 0 {
		errs = append(errs, fmt.Errorf("shadow_resolution %d must be positive", r.ShadowResolution))
	}
	if r.MaxShadowLights < 0 {
		errs = append(errs, fmt.Errorf("max_shadow_lights %d must not be negative", r.MaxShadowLights))
	}
	if r.ShadowBox.HalfExtent <= 0 || r.ShadowBox.Far <= r.ShadowBox.Near {
		errs = append(errs, errors.New("shadow_box needs a positive half_extent and far > near"))
	}
	if r.EnvCubeSize <= 0 || r.PrefilterSize <= 0 || r.BRDFSize <= 0 {
		errs = append(errs, errors.New("env_cube_size, prefilter_size and brdf_size must be positive"))
	}
	if r.PrefilterMips < 1 || r.PrefilterSize>>(r.PrefilterMips-1) < 1 {
		errs = append(errs, fmt.Errorf("prefilter_mips %d does not fit prefilter_size %d", r.PrefilterMips, r.PrefilterSize))
	}
	if r.SHClamp < 0 {
		errs = append(errs, fmt.Errorf("sh_clamp %g must not be negative", r.SHClamp))
	}

	for i, l := range c.Scene.Lights {
		switch l.Type {
		case LightDirectional, LightPoint:
		default:
			errs = append(errs, fmt.Errorf("lights[%d]: unknown type %q", i, l.Type))
		}
	}
	for i, m := range c.Scene.Models {
		if m.Path == "" {
			errs = append(errs, fmt.Errorf("models[%d]: empty path", i))
		}
	}

	cam := c.Scene.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 || cam.Near <= 0 || cam.Far <= cam.Near {
		errs = append(errs, errors.New("camera needs 0 < fov < 180 and 0 < near < far"))
	}

	return errors.Join(errs...)
}
