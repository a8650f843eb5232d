package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSkybox     = flag.String("skybox", "", "Equirectangular HDR environment to bake")
	flagModel      = flag.String("model", "", "Comma-separated glTF files to load (replaces configured models)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSkybox != "" {
		cfg.Scene.Skybox = *flagSkybox
	}
	if *flagModel != "" {
		cfg.Scene.Models = cfg.Scene.Models[:0]
		for _, p := range strings.Split(*flagModel, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Scene.Models = append(cfg.Scene.Models, ModelConfig{Path: p, Scale: [3]float32{1, 1, 1}})
			}
		}
	}
}
