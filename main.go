package main

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	apiapp "yagt/internal/api/app"
	"yagt/internal/bootstrap"
	"yagt/internal/platform/config"
	"yagt/internal/platform/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	c, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatalw("bootstrap failed", "err", err)
	}

	app := NewApp(c)

	// API bindings
	gamesAPI := apiapp.NewGamesAPI(c.Library, c.Supervisor)
	configAPI := apiapp.NewConfigAPI(c.Library, c.Manager, gamesAPI, log.Named("config"))
	translationsAPI := apiapp.NewTranslationsAPI(c.Manager, c.Dictionary, c.Events)
	backendsAPI := apiapp.NewBackendsAPI(c.Backends, c.Manager)

	err = wails.Run(&options.App{
		Title:  "yagt",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
			gamesAPI,
			configAPI,
			translationsAPI,
			backendsAPI,
		},
	})
	if err != nil {
		log.Errorw("wails exited", "err", err)
	}
}
