package main

import (
	"context"
	"flag"
	"github.com/gotoplanb/kzrk/internal/api"
	"github.com/gotoplanb/kzrk/internal/config"
	"github.com/gotoplanb/kzrk/internal/core"
	database "github.com/gotoplanb/kzrk/internal/db"
	"github.com/gotoplanb/kzrk/internal/game"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var configPath = flag.String("config", "", "path to a YAML or JSON config file")

func main() {
	flag.Parse()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(cfg.Log)

	catalog, err := core.LoadCatalog(cfg.Game.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load catalog")
	}

	opts := core.Options{
		CheatMode: cfg.Game.CheatMode,
		BoardSize: cfg.Game.MessageBoardSize,
	}
	if cfg.Game.MarketEvents {
		opts.Events = game.NewEventEngine(time.Now().UnixNano(), cfg.Game.EventChance)
	}
	if cfg.Game.CheatMode {
		log.Warn().Msg("Cheat mode enabled: travel ignores fuel")
	}

	svcCfg := core.ServiceConfig{
		Catalog:           catalog,
		RoomOptions:       opts,
		DefaultMaxPlayers: cfg.Game.DefaultMaxPlayers,
	}
	if cfg.Database.Enabled {
		store, err := database.Open(cfg.Database.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open database")
		}
		defer store.Close()
		svcCfg.Store = store
	}

	service, err := core.NewService(svcCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start room service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() {
		service.RunJanitor(ctx, cfg.Rooms.SweepInterval, cfg.Rooms.IdleTTL)
	})
	wg.Go(func() {
		defer stop()
		if err := api.Serve(ctx, cfg.Server.Addr, api.NewRouter(service, cfg.Server.AllowedOrigins)); err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	})
	wg.Wait()

	log.Info().Msg("Bye")
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
