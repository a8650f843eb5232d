package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Render.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Render.ShadowResolution)
	}
	if cfg.Render.MaxShadowLights != 4 {
		t.Errorf("expected 4 shadow lights, got %d", cfg.Render.MaxShadowLights)
	}
	if cfg.Render.EnvCubeSize != 1024 || cfg.Render.PrefilterSize != 512 || cfg.Render.PrefilterMips != 9 {
		t.Errorf("unexpected bake sizes: %+v", cfg.Render)
	}
	if cfg.Render.BRDFSize != 512 {
		t.Errorf("expected brdf size 512, got %d", cfg.Render.BRDFSize)
	}
	if cfg.Render.SHClamp != 0 {
		t.Errorf("expected sh clamp disabled, got %g", cfg.Render.SHClamp)
	}

	if cfg.Scene.Camera.Radius != 5 || cfg.Scene.Camera.FOV != 36 {
		t.Errorf("unexpected camera defaults: %+v", cfg.Scene.Camera)
	}
	if len(cfg.Scene.Lights) != 1 || cfg.Scene.Lights[0].Type != LightDirectional {
		t.Errorf("expected one directional light, got %+v", cfg.Scene.Lights)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "prism.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

render:
  shadow_resolution: 1024
  max_shadow_lights: 2
  prefilter_mips: 5
  clear_color: [0, 0, 0, 1]

scene:
  skybox: "hdr/studio.hdr"
  models:
    - path: "models/helmet.gltf"
      position: [1, 2, 3]
      rotation: [0, 90, 0]
      scale: [2, 2, 2]
  lights:
    - type: point
      position: [0, 3, 0]
      color: [1, 0.5, 0.25]
      radius: 8
  camera:
    radius: 12

logging:
  level: "debug"
  log_file: "prism.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Render.ShadowResolution != 1024 {
		t.Errorf("expected shadow resolution 1024, got %d", cfg.Render.ShadowResolution)
	}
	if cfg.Render.MaxShadowLights != 2 {
		t.Errorf("expected 2 shadow lights, got %d", cfg.Render.MaxShadowLights)
	}
	if cfg.Render.PrefilterMips != 5 {
		t.Errorf("expected 5 prefilter mips, got %d", cfg.Render.PrefilterMips)
	}
	// Untouched keys keep their defaults.
	if cfg.Render.EnvCubeSize != 1024 {
		t.Errorf("expected default env cube size, got %d", cfg.Render.EnvCubeSize)
	}

	if cfg.Scene.Skybox != "hdr/studio.hdr" {
		t.Errorf("expected skybox hdr/studio.hdr, got %s", cfg.Scene.Skybox)
	}
	if len(cfg.Scene.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(cfg.Scene.Models))
	}
	m := cfg.Scene.Models[0]
	if m.Path != "models/helmet.gltf" || m.Position != [3]float32{1, 2, 3} || m.Rotation[1] != 90 || m.Scale[0] != 2 {
		t.Errorf("unexpected model: %+v", m)
	}

	if len(cfg.Scene.Lights) != 1 {
		t.Fatalf("expected lights to be replaced by the file, got %d", len(cfg.Scene.Lights))
	}
	if l := cfg.Scene.Lights[0]; l.Type != LightPoint || l.Radius != 8 {
		t.Errorf("unexpected light: %+v", l)
	}

	if cfg.Scene.Camera.Radius != 12 {
		t.Errorf("expected camera radius 12, got %f", cfg.Scene.Camera.Radius)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "prism.log" {
		t.Errorf("expected log file 'prism.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/prism.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero width",
			mutate:  func(c *Config) { c.Window.Width = 0 },
			wantErr: "window size",
		},
		{
			name:    "too many prefilter mips",
			mutate:  func(c *Config) { c.Render.PrefilterSize = 16; c.Render.PrefilterMips = 6 },
			wantErr: "prefilter_mips",
		},
		{
			name:    "unknown light type",
			mutate:  func(c *Config) { c.Scene.Lights[0].Type = "spot" },
			wantErr: "unknown type",
		},
		{
			name:    "camera far before near",
			mutate:  func(c *Config) { c.Scene.Camera.Far = 0.01 },
			wantErr: "camera",
		},
		{
			name:    "negative sh clamp",
			mutate:  func(c *Config) { c.Render.SHClamp = -1 },
			wantErr: "sh_clamp",
		},
		{
			name:    "negative shadow lights",
			mutate:  func(c *Config) { c.Render.MaxShadowLights = -1 },
			wantErr: "max_shadow_lights",
		},
		{
			name:   "zero shadow lights allowed",
			mutate: func(c *Config) { c.Render.MaxShadowLights = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(fileName, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find prism.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "skybox flag",
			setup: func() { *flagSkybox = "sky.hdr" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Skybox != "sky.hdr" {
					t.Errorf("expected skybox sky.hdr, got %s", cfg.Scene.Skybox)
				}
			},
			teardown: func() { *flagSkybox = "" },
		},
		{
			name:  "model flag",
			setup: func() { *flagModel = "a.gltf, b.glb" },
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Scene.Models) != 2 {
					t.Fatalf("expected 2 models, got %d", len(cfg.Scene.Models))
				}
				if cfg.Scene.Models[1].Path != "b.glb" {
					t.Errorf("expected b.glb, got %s", cfg.Scene.Models[1].Path)
				}
				if cfg.Scene.Models[0].Scale != [3]float32{1, 1, 1} {
					t.Errorf("expected unit scale, got %v", cfg.Scene.Models[0].Scale)
				}
			},
			teardown: func() { *flagModel = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "prism.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag wins over file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "prism.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  prefilter_mips: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prism.yaml")

	cfg := Default()
	cfg.Scene.Skybox = "sky.hdr"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	loaded.Scene.Skybox = ""
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scene.Skybox != "sky.hdr" {
		t.Errorf("expected skybox to survive save, got %q", loaded.Scene.Skybox)
	}
}
