package main

import (
	"context"

	_ "github.com/jimmicro/version"
	"github.com/rs/zerolog/log"

	"github.com/jimyag/hrdb/internal/hrdbd"
	"github.com/jimyag/hrdb/internal/hrdbd/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create config")
	}
	server, err := hrdbd.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}
	if err := server.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
