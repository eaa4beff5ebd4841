package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"boqtrack/internal/api"
	"boqtrack/internal/cli"
	"boqtrack/internal/config"
	"boqtrack/internal/resource"
	"boqtrack/internal/session"
	"boqtrack/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("BOQ_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	sessions := session.NewStore(cfg.Session.Path)
	if err := sessions.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load session")
	}

	tc := transport.NewClient(transport.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      time.Duration(cfg.API.TimeoutSec) * time.Second,
		RetryElapsed: time.Duration(cfg.API.RetryElapsedSec) * time.Second,
	}, sessions)

	app := &cli.App{
		Cfg:      cfg,
		Sessions: sessions,
		API:      api.NewClient(tc, sessions),
		Notify:   resource.NewNotifier(time.Duration(cfg.UI.NotifyTTLSec) * time.Second),
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		os.Exit(1)
	}
}
