package main

import (
	"flag"
	"os"

	"github.com/cpne/stages/internal/bootstrap"
	"github.com/cpne/stages/internal/pkg/logger"
	"github.com/cpne/stages/internal/server"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML configuration")
	flag.Parse()

	srv, err := server.New(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with an error")
		os.Exit(1)
	}
	logger.Info().Msg("Server stopped")
}
