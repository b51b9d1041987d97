package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	config.ApplyEnv()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	billboard := services.NewBillboardService(services.BillboardOpts{
		BaseURL:           config.Billboard.BaseURL,
		UserAgent:         config.Billboard.UserAgent,
		RequestsPerSecond: config.Billboard.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: config.Billboard.Timeout()},
	})

	var spotifyService services.TrackSource
	if config.Credentials.Spotify.Configured() {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		} else {
			logger.Warn("spotify service unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Charts:     billboard,
		Tracks:     spotifyService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "chartx",
		Usage:    "Crawl music charts, summarize peaks and enrich tracks with Spotify metadata",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := app.Run(ctx, os.Args)
	stop()
	runner.Close()

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
