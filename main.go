package main

import (
	"context"
	"embed"

	"github.com/rs/zerolog/log"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"taletable/internal/bootstrap"
	"taletable/internal/config"
	"taletable/internal/events"
	"taletable/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Warn().Err(err).Msg("invalid log level, using info")
	}

	rt, err := bootstrap.New(cfg, bootstrap.Options{SQLLogger: logger.Warn})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	app := NewApp(rt)
	events.EnableRuntimeEmitter()

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "Taletable",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "Taletable",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			rt.Chat,
			rt.Db.AppSettings,
			rt.Db.ProjectSettings,
			rt.Db.Snippets,
			rt.Db.Records,
			rt.Keys,
			rt.Models,
		},
	})

	if err != nil {
		log.Error().Err(err).Msg("application exited with error")
	}
}
