// Package main is the entry point for the prism PBR viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/input"
	"github.com/Faultbox/prism/internal/engine/opengl"
	"github.com/Faultbox/prism/internal/engine/window"
	"github.com/Faultbox/prism/internal/logger"
	"github.com/Faultbox/prism/internal/viewer"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log, err := logger.New(cfg.Logging.Level, fileCfg, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer log.Close()

	log.Info("=== prism ===")
	log.Debug("config", zap.Any("config", cfg))

	// Window first: the device needs a current GL context.
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, log.Logger)
	if err != nil {
		log.Error("failed to create window", zap.Error(err))
		return 1
	}
	defer win.Close()

	dev, err := opengl.New(cfg.Render.ClearColor, log.Logger)
	if err != nil {
		log.Error("failed to initialize graphics", zap.Error(err))
		return 1
	}
	defer dev.Close()

	v, err := viewer.New(cfg, dev, win, input.New(), log.Logger)
	if err != nil {
		log.Error("failed to create viewer", zap.Error(err))
		return 1
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		log.Error("viewer error", zap.Error(err))
		return 1
	}

	log.Info("viewer closed normally")
	return 0
}
