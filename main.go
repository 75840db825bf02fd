package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
	"github.com/robalobadob/battleship/apps/go-server/internal/httpserver"
	"github.com/robalobadob/battleship/apps/go-server/internal/layouts"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.UsingDevSecret() {
		log.Warn().Msg("SERVER_SECRET not set, using development secret")
	}

	ctx := context.Background()
	db, err := store.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("failed to open database")
	}
	defer db.Close()

	var sessions store.Store
	switch cfg.Store {
	case "sqlite":
		sessions = store.NewSQLiteStore(db)
	default:
		sessions = store.NewMemoryStore()
	}

	catalog := layouts.New(cfg.LayoutDir)
	if !catalog.Has(cfg.DefaultLayout) {
		log.Warn().Str("layout", cfg.DefaultLayout).Msg("default layout not found")
	}

	srv := httpserver.New(cfg, sessions, catalog, daily.NewStore(db))
	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.Store).
		Strs("layouts", catalog.Names()).
		Msg("starting battleship server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
