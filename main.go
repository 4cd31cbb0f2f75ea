package main

import (
	"embed"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/aquascape/pkg/catalog"
	"github.com/chazu/aquascape/pkg/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	log := logger.NewDefaultLogger()

	cfg, err := config.Load(config.Path)
	if err != nil {
		log.Fatal(err.Error())
	}
	level, err := logger.StringToLogLevel(cfg.LogLevel)
	if err != nil {
		log.Warning(err.Error())
		level = logger.INFO
	}
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		log.Fatal(err.Error())
	}

	app := NewApp(cfg, cat, log)

	err = wails.Run(&options.App{
		Title:  "Aquascape",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Logger:    log,
		LogLevel:  level,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Error(err.Error())
	}
}
